package clock

import (
	"testing"
	"time"
)

func TestDateOf_KeepsCalendarDay(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	ts := time.Date(2026, 3, 10, 1, 30, 0, 0, loc)

	got := DateOf(ts)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestFixed_Set(t *testing.T) {
	c := NewFixed(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	c.Set(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	if c.Today().Month() != time.February {
		t.Errorf("Set 后期望二月，实际 %v", c.Today().Month())
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-05-04")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if d.Day() != 4 || d.Month() != time.May {
		t.Errorf("解析结果错误: %v", d)
	}
	if _, err := ParseDate("2026/05/04"); err == nil {
		t.Error("期望非法格式报错")
	}
}
