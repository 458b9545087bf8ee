package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/config"
	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
	"bca-portal/pkg/metrics"
)

// ── 学费模块业务错误 ──

var (
	ErrInvalidAmount   = fmt.Errorf("%w: 缴费金额必须大于 0", ErrValidation)
	ErrFeeSettled      = fmt.Errorf("%w: 该学期学费已结清", ErrOverpayment)
	ErrPaymentConflict = fmt.Errorf("%w: 缴费并发冲突，请稍后重试", ErrConflict)
)

// FeeService 学费账本业务接口
type FeeService interface {
	// GetOrCreate 幂等：同一 (学生, 学期) 总是返回同一条记录
	GetOrCreate(ctx context.Context, actor Actor, studentID string, semester int) (*model.FeeRecord, error)
	// ApplyPayment 登记一笔缴费；失败时记录不变
	ApplyPayment(ctx context.Context, actor Actor, req *dto.ApplyPaymentRequest) (*model.FeeRecord, *model.FeePayment, error)
	// AggregateStatus 汇总 1..upTo 学期；upTo 为 0 时取学生当前学期
	AggregateStatus(ctx context.Context, actor Actor, studentID string, upTo int) (*model.FeeAggregate, error)

	Overview(ctx context.Context, actor Actor, q *dto.FeeOverviewQuery) (*dto.FeeOverviewResponse, error)
	PaymentHistory(ctx context.Context, actor Actor, studentID string) (*dto.PaymentHistoryResponse, error)
}

type feeService struct {
	cfg     *config.Config
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewFeeService 创建 FeeService 实例
func NewFeeService(
	cfg *config.Config,
	repo *repository.Repository,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) FeeService {
	return &feeService{cfg: cfg, repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── GetOrCreate ──────────────────────

func (s *feeService) GetOrCreate(ctx context.Context, actor Actor, studentID string, semester int) (*model.FeeRecord, error) {
	if err := canViewStudent(actor, studentID); err != nil {
		return nil, err
	}
	if err := s.checkSemester(semester); err != nil {
		return nil, err
	}
	if _, err := loadStudent(ctx, s.repo, s.logger, studentID); err != nil {
		return nil, err
	}
	return s.getOrCreate(ctx, s.repo, studentID, semester)
}

func (s *feeService) getOrCreate(ctx context.Context, repo *repository.Repository, studentID string, semester int) (*model.FeeRecord, error) {
	rec, err := repo.FeeRecord.GetOrCreate(ctx, model.NewFeeRecord(studentID, semester, s.cfg.Ledger.SemesterFee))
	if err != nil {
		s.logger.Error("获取学费记录失败",
			zap.String("student_id", studentID), zap.Int("semester", semester), zap.Error(err))
		return nil, err
	}
	return rec, nil
}

// ────────────────────── ApplyPayment ──────────────────────

func (s *feeService) ApplyPayment(ctx context.Context, actor Actor, req *dto.ApplyPaymentRequest) (*model.FeeRecord, *model.FeePayment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	if req.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if err := s.checkSemester(req.Semester); err != nil {
		return nil, nil, err
	}
	if _, err := loadStudent(ctx, s.repo, s.logger, req.StudentID); err != nil {
		return nil, nil, err
	}

	for attempt := 1; attempt <= s.cfg.Ledger.PaymentRetry; attempt++ {
		rec, payment, err := s.applyOnce(ctx, actor, req)
		switch {
		case err == nil:
			s.metrics.FeePayment("ok", req.Amount)
			s.logger.Info("登记缴费",
				zap.String("student_id", req.StudentID),
				zap.Int("semester", req.Semester),
				zap.Int64("amount", req.Amount),
				zap.String("receipt", payment.ReceiptNumber))
			return rec, payment, nil
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			s.logger.Warn("缴费版本冲突，重试",
				zap.String("student_id", req.StudentID), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, ErrOverpayment):
			s.metrics.FeePayment("overpayment", 0)
			return nil, nil, err
		default:
			s.metrics.FeePayment("error", 0)
			s.logger.Error("登记缴费失败", zap.String("student_id", req.StudentID), zap.Error(err))
			return nil, nil, err
		}
	}

	s.metrics.FeePayment("conflict", 0)
	return nil, nil, ErrPaymentConflict
}

// applyOnce 行锁读取、校验余额、带版本号更新并追加流水，全部在一个事务内
func (s *feeService) applyOnce(ctx context.Context, actor Actor, req *dto.ApplyPaymentRequest) (*model.FeeRecord, *model.FeePayment, error) {
	var (
		out     *model.FeeRecord
		payment *model.FeePayment
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if _, err := s.getOrCreate(ctx, tx, req.StudentID, req.Semester); err != nil {
			return err
		}
		rec, err := tx.FeeRecord.GetForUpdate(ctx, req.StudentID, req.Semester)
		if err != nil {
			return err
		}

		remaining := rec.Balance()
		if remaining <= 0 {
			return ErrFeeSettled
		}
		if req.Amount > remaining {
			return fmt.Errorf("%w: 本次 %d，剩余应缴 %d", ErrOverpayment, req.Amount, remaining)
		}

		now := s.clock.Now()
		rec.PaidAmount += req.Amount
		rec.Recalculate()
		rec.PaymentDate = &now
		rec.PaymentMethod = req.Method
		rec.Notes = req.Notes
		rec.RecordedBy = actor.userRef()
		rec.UpdatedBy = actor.userRef()
		if err := tx.FeeRecord.Update(ctx, rec); err != nil {
			return err
		}

		payment = &model.FeePayment{
			FeeRecordID:   rec.FeeRecordID,
			StudentID:     rec.StudentID,
			Semester:      rec.Semester,
			Amount:        req.Amount,
			PaymentMethod: req.Method,
			ReceiptNumber: newReceiptNumber(now),
			Notes:         req.Notes,
			RecordedBy:    actor.userRef(),
			PaidAt:        now,
		}
		if err := tx.FeePayment.Create(ctx, payment); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, payment, nil
}

// newReceiptNumber RCP-日期-8 位随机
func newReceiptNumber(at time.Time) string {
	return fmt.Sprintf("RCP-%s-%s", at.Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

// ────────────────────── 汇总 ──────────────────────

func (s *feeService) AggregateStatus(ctx context.Context, actor Actor, studentID string, upTo int) (*model.FeeAggregate, error) {
	if err := canViewStudent(actor, studentID); err != nil {
		return nil, err
	}
	student, err := loadStudent(ctx, s.repo, s.logger, studentID)
	if err != nil {
		return nil, err
	}
	if upTo == 0 {
		upTo = student.CurrentSemester
	}
	if err := s.checkSemester(upTo); err != nil {
		return nil, err
	}
	return s.aggregate(ctx, studentID, upTo)
}

// aggregate 缺失的学期按默认学费建档后计入；汇总状态本身不落库
func (s *feeService) aggregate(ctx context.Context, studentID string, upTo int) (*model.FeeAggregate, error) {
	existing, err := s.repo.FeeRecord.ListByStudent(ctx, studentID, upTo)
	if err != nil {
		s.logger.Error("查询学费记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	bySemester := make(map[int]model.FeeRecord, len(existing))
	for _, r := range existing {
		bySemester[r.Semester] = r
	}

	records := make([]model.FeeRecord, 0, upTo)
	for sem := 1; sem <= upTo; sem++ {
		if r, ok := bySemester[sem]; ok {
			records = append(records, r)
			continue
		}
		rec, err := s.getOrCreate(ctx, s.repo, studentID, sem)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	agg := model.AggregateFees(records)
	return &agg, nil
}

func (s *feeService) Overview(ctx context.Context, actor Actor, q *dto.FeeOverviewQuery) (*dto.FeeOverviewResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if q.Semester != 0 {
		if err := s.checkSemester(q.Semester); err != nil {
			return nil, err
		}
	}

	students, _, err := s.repo.Student.List(ctx, repository.StudentFilter{Search: q.Search, ActiveOnly: true}, 0, 0)
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.FeeOverviewResponse{Rows: []dto.FeeOverviewRow{}}
	for i := range students {
		st := &students[i]
		semester := q.Semester
		if semester == 0 {
			semester = st.CurrentSemester
		}
		rec, err := s.getOrCreate(ctx, s.repo, st.StudentID, semester)
		if err != nil {
			return nil, err
		}

		switch q.Status {
		case "pending":
			if rec.IsCompleted {
				continue
			}
		case "completed":
			if !rec.IsCompleted {
				continue
			}
		}

		resp.Rows = append(resp.Rows, dto.FeeOverviewRow{
			StudentID:       st.StudentID,
			StudentCode:     st.StudentCode,
			Name:            st.FullName(),
			CurrentSemester: st.CurrentSemester,
			Semester:        rec.Semester,
			TotalFee:        rec.TotalFee,
			PaidAmount:      rec.PaidAmount,
			RemainingAmount: rec.RemainingAmount,
			PaymentStatus:   rec.PaymentStatus,
		})
		resp.TotalExpected += rec.TotalFee
		resp.TotalCollected += rec.PaidAmount
		if rec.IsCompleted {
			resp.CompletedCount++
		} else {
			resp.OutstandingCount++
		}
	}
	resp.CollectionRate = model.Percent(resp.TotalCollected, resp.TotalExpected)
	return resp, nil
}

func (s *feeService) PaymentHistory(ctx context.Context, actor Actor, studentID string) (*dto.PaymentHistoryResponse, error) {
	if err := canViewStudent(actor, studentID); err != nil {
		return nil, err
	}
	if _, err := loadStudent(ctx, s.repo, s.logger, studentID); err != nil {
		return nil, err
	}

	payments, err := s.repo.FeePayment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询缴费流水失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	var total int64
	for _, p := range payments {
		total += p.Amount
	}
	if payments == nil {
		payments = []model.FeePayment{}
	}
	return &dto.PaymentHistoryResponse{Payments: payments, TotalPaid: total}, nil
}

// ── 辅助函数 ──

func (s *feeService) checkSemester(semester int) error {
	if semester < 1 || semester > s.cfg.Ledger.MaxSemester {
		return ErrInvalidSemester
	}
	return nil
}

// canViewStudent 管理员可查看任何学生；学生只能查看自己
func canViewStudent(actor Actor, studentID string) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsStudent() && actor.ProfileID != "" && actor.ProfileID == studentID {
		return nil
	}
	return ErrAccessDenied
}

// errNotFoundOr 将 gorm.ErrRecordNotFound 翻译为 notFound
func errNotFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
