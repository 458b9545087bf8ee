// Package job 后台定时任务
package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bca-portal/internal/service"
	"bca-portal/pkg/clock"
)

// SalaryGenerator 批量生成当月工资记录
type SalaryGenerator interface {
	GenerateMonthly(ctx context.Context, actor service.Actor, month, year int) (int, error)
}

// SalaryCron 按 cron 表达式为在职教师补齐当月工资记录
type SalaryCron struct {
	salary  SalaryGenerator
	clock   clock.Clock
	logger  *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewSalaryCron 创建工资定时任务，schedule 为标准 5 段 cron 表达式
func NewSalaryCron(schedule string, salary SalaryGenerator, clk clock.Clock, logger *zap.Logger) (*SalaryCron, error) {
	j := &SalaryCron{
		salary:  salary,
		clock:   clk,
		logger:  logger.Named("salary_cron"),
		timeout: 2 * time.Minute,
	}

	j.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return nil, err
	}
	return j, nil
}

// RunOnce 为当前月份生成一次，返回新建数量
func (j *SalaryCron) RunOnce(ctx context.Context) (int, error) {
	now := j.clock.Now()
	month, year := int(now.Month()), now.Year()

	created, err := j.salary.GenerateMonthly(ctx, service.SystemActor, month, year)
	if err != nil {
		j.logger.Error("生成月度工资记录失败",
			zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return 0, err
	}
	j.logger.Info("月度工资记录已生成",
		zap.Int("month", month), zap.Int("year", year), zap.Int("created", created))
	return created, nil
}

// Start 启动调度（非阻塞）
func (j *SalaryCron) Start() {
	j.cron.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (j *SalaryCron) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
