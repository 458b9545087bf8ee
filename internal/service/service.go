package service

import (
	"go.uber.org/zap"

	"bca-portal/config"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	"bca-portal/pkg/jwt"
	"bca-portal/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Roster     RosterService
	Course     CourseService
	Attendance AttendanceService
	Submission SubmissionService
	Fee        FeeService
	Salary     SalaryService
	Dashboard  DashboardService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	attendance := NewAttendanceService(cfg, repo, clk, m, logger)
	fee := NewFeeService(cfg, repo, clk, m, logger)
	salary := NewSalaryService(repo, clk, m, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, clk, logger),
		Roster:     NewRosterService(cfg, repo, logger),
		Course:     NewCourseService(cfg, repo, logger),
		Attendance: attendance,
		Submission: NewSubmissionService(repo, clk, m, logger),
		Fee:        fee,
		Salary:     salary,
		Dashboard:  NewDashboardService(repo, attendance, fee, clk, logger),
		Export:     NewExportService(fee, salary, attendance, logger),
	}
}
