// Package clock 提供可替换的时间源，业务层通过它获取“今天”与“现在”。
package clock

import (
	"sync"
	"time"
)

// Clock 时间源
type Clock interface {
	Now() time.Time
	Today() time.Time
}

// System 使用系统时间，日期按 loc 时区截断
type System struct {
	loc *time.Location
}

// NewSystem 创建系统时钟，loc 为空时使用 UTC
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time { return time.Now().In(s.loc) }

func (s *System) Today() time.Time { return DateOf(s.Now()) }

// Fixed 固定时钟，供测试使用
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixed 创建固定在 t 的时钟
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

func (f *Fixed) Today() time.Time { return DateOf(f.Now()) }

// Set 调整当前时间
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// DateOf 截断到当天零点（保留时区），再以 UTC 表示同一日历日期
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
