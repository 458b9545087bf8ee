package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
	"bca-portal/pkg/metrics"
)

// ── 工资模块业务错误 ──

var (
	ErrSalaryNotFound      = fmt.Errorf("%w: 工资记录不存在", ErrNotFound)
	ErrSalaryNotConfigured = fmt.Errorf("%w: 该教师未设置基本工资", ErrValidation)
	ErrInvalidPeriod       = fmt.Errorf("%w: 月份须为 1-12，年份须为 2000-2100", ErrValidation)
	ErrNegativeAdjustment  = fmt.Errorf("%w: 奖金与扣款不能为负数", ErrValidation)
	ErrNegativeNetSalary   = fmt.Errorf("%w: 实发工资不能为负数", ErrValidation)
	ErrSalaryAlreadyPaid   = fmt.Errorf("%w: 该月工资已发放", ErrInvalidState)
)

// SystemActor 定时任务等内部调用使用的操作者
var SystemActor = Actor{Role: model.RoleAdmin}

// SalaryService 工资账本业务接口
type SalaryService interface {
	GetOrCreate(ctx context.Context, actor Actor, teacherID string, month, year int) (*model.SalaryRecord, error)
	// MarkPaid 发放后记录即终态，重复发放返回 ErrSalaryAlreadyPaid
	MarkPaid(ctx context.Context, actor Actor, id string, req *dto.MarkSalaryPaidRequest) (*model.SalaryRecord, error)
	// GenerateMonthly 为在职且设置了工资的教师补齐当月记录，返回新建数量
	GenerateMonthly(ctx context.Context, actor Actor, month, year int) (int, error)

	// MonthlyOverview month / year 为 0 时取当月
	MonthlyOverview(ctx context.Context, actor Actor, month, year int) (*dto.SalaryOverviewResponse, error)
	History(ctx context.Context, actor Actor, teacherID string) (*dto.SalaryHistoryResponse, error)
}

type salaryService struct {
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSalaryService 创建 SalaryService 实例
func NewSalaryService(repo *repository.Repository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) SalaryService {
	return &salaryService{repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── GetOrCreate ──────────────────────

func (s *salaryService) GetOrCreate(ctx context.Context, actor Actor, teacherID string, month, year int) (*model.SalaryRecord, error) {
	if err := canViewTeacher(actor, teacherID); err != nil {
		return nil, err
	}
	if !model.ValidPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}
	teacher, err := loadTeacher(ctx, s.repo, s.logger, teacherID)
	if err != nil {
		return nil, err
	}
	if !teacher.HasSalary() {
		return nil, ErrSalaryNotConfigured
	}

	if _, err := s.createIfAbsent(ctx, teacher, month, year); err != nil {
		return nil, err
	}
	rec, err := s.repo.SalaryRecord.GetByTeacherPeriod(ctx, teacherID, month, year)
	if err != nil {
		s.logger.Error("查询工资记录失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, errNotFoundOr(err, ErrSalaryNotFound)
	}
	return rec, nil
}

func (s *salaryService) createIfAbsent(ctx context.Context, teacher *model.Teacher, month, year int) (bool, error) {
	created, err := s.repo.SalaryRecord.CreateIfAbsent(ctx, model.NewSalaryRecord(teacher.TeacherID, month, year, *teacher.BaseSalary))
	if err != nil {
		s.logger.Error("创建工资记录失败",
			zap.String("teacher_id", teacher.TeacherID), zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return false, err
	}
	return created, nil
}

// ────────────────────── MarkPaid ──────────────────────

func (s *salaryService) MarkPaid(ctx context.Context, actor Actor, id string, req *dto.MarkSalaryPaidRequest) (*model.SalaryRecord, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Bonus < 0 || req.Deductions < 0 {
		return nil, ErrNegativeAdjustment
	}

	rec, err := s.repo.SalaryRecord.GetByID(ctx, id)
	if err != nil {
		err = errNotFoundOr(err, ErrSalaryNotFound)
		if !errors.Is(err, ErrSalaryNotFound) {
			s.logger.Error("查询工资记录失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	if rec.PaymentStatus == model.SalaryStatusPaid || rec.IsPaid {
		return nil, ErrSalaryAlreadyPaid
	}
	if model.ComputeNet(rec.BaseSalary, req.Bonus, req.Deductions) < 0 {
		return nil, ErrNegativeNetSalary
	}

	now := s.clock.Now()
	rec.Bonus = req.Bonus
	rec.Deductions = req.Deductions
	rec.PaymentStatus = model.SalaryStatusPaid
	rec.PaymentDate = &now
	rec.PaymentMethod = req.Method
	rec.Notes = req.Notes
	rec.ProcessedBy = actor.userRef()
	rec.UpdatedBy = actor.userRef()
	rec.Recalculate()

	if err := s.repo.SalaryRecord.MarkPaid(ctx, rec); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSalaryAlreadyPaid
		}
		s.logger.Error("发放工资失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.metrics.SalaryEvent("paid", 1)
	s.logger.Info("工资已发放",
		zap.String("id", id), zap.String("teacher_id", rec.TeacherID), zap.Int64("net", rec.NetSalary))
	return rec, nil
}

// ────────────────────── GenerateMonthly ──────────────────────

func (s *salaryService) GenerateMonthly(ctx context.Context, actor Actor, month, year int) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if !model.ValidPeriod(month, year) {
		return 0, ErrInvalidPeriod
	}

	teachers, err := s.repo.Teacher.ListActiveWithSalary(ctx)
	if err != nil {
		s.logger.Error("查询在职教师失败", zap.Error(err))
		return 0, err
	}

	created := 0
	for i := range teachers {
		ok, err := s.createIfAbsent(ctx, &teachers[i], month, year)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	s.metrics.SalaryEvent("generated", created)
	s.logger.Info("生成月度工资",
		zap.Int("month", month), zap.Int("year", year), zap.Int("created", created))
	return created, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *salaryService) MonthlyOverview(ctx context.Context, actor Actor, month, year int) (*dto.SalaryOverviewResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	month, year = s.period(month, year)
	if !model.ValidPeriod(month, year) {
		return nil, ErrInvalidPeriod
	}

	if _, err := s.GenerateMonthly(ctx, actor, month, year); err != nil {
		return nil, err
	}
	records, err := s.repo.SalaryRecord.ListByPeriod(ctx, month, year)
	if err != nil {
		s.logger.Error("查询月度工资失败", zap.Int("month", month), zap.Int("year", year), zap.Error(err))
		return nil, err
	}

	resp := summarizeSalaries(month, year, records)
	return &resp, nil
}

// summarizeSalaries 只统计已存在的记录
func summarizeSalaries(month, year int, records []model.SalaryRecord) dto.SalaryOverviewResponse {
	resp := dto.SalaryOverviewResponse{Month: month, Year: year, Records: records}
	if records == nil {
		resp.Records = []model.SalaryRecord{}
	}
	for _, r := range records {
		resp.TotalExpense += r.NetSalary
		if r.IsPaid {
			resp.TotalPaid += r.NetSalary
			resp.PaidCount++
		} else {
			resp.PendingCount++
		}
	}
	resp.PaidRate = model.Percent(int64(resp.PaidCount), int64(len(records)))
	return resp
}

func (s *salaryService) History(ctx context.Context, actor Actor, teacherID string) (*dto.SalaryHistoryResponse, error) {
	if err := canViewTeacher(actor, teacherID); err != nil {
		return nil, err
	}
	if _, err := loadTeacher(ctx, s.repo, s.logger, teacherID); err != nil {
		return nil, err
	}

	records, err := s.repo.SalaryRecord.ListPaidByTeacher(ctx, teacherID)
	if err != nil {
		s.logger.Error("查询工资历史失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	var total int64
	for _, r := range records {
		total += r.NetSalary
	}
	if records == nil {
		records = []model.SalaryRecord{}
	}
	return &dto.SalaryHistoryResponse{Records: records, TotalPaid: total}, nil
}

// period 缺省取当前月份
func (s *salaryService) period(month, year int) (int, int) {
	now := s.clock.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	return month, year
}

// canViewTeacher 管理员可查看任何教师；教师只能查看自己
func canViewTeacher(actor Actor, teacherID string) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsTeacher() && actor.ProfileID != "" && actor.ProfileID == teacherID {
		return nil
	}
	return ErrAccessDenied
}
