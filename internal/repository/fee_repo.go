package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// FeeRecordRepository 学期学费数据访问接口
type FeeRecordRepository interface {
	// GetOrCreate 按 (student_id, semester) 插入，已存在时返回现有记录
	GetOrCreate(ctx context.Context, rec *model.FeeRecord) (*model.FeeRecord, error)
	GetByStudentSemester(ctx context.Context, studentID string, semester int) (*model.FeeRecord, error)
	// GetForUpdate 使用 SELECT ... FOR UPDATE 行级锁读取
	// 必须在事务连接上调用（通过 Repository.WithTx 注入）
	GetForUpdate(ctx context.Context, studentID string, semester int) (*model.FeeRecord, error)
	// Update 基于 version 的乐观锁更新，冲突时返回 ErrOptimisticLock
	Update(ctx context.Context, rec *model.FeeRecord) error
	// ListByStudent 学生 1..upTo 学期的记录（upTo <= 0 时不限）
	ListByStudent(ctx context.Context, studentID string, upTo int) ([]model.FeeRecord, error)
}

// FeePaymentRepository 缴费流水数据访问接口
type FeePaymentRepository interface {
	Create(ctx context.Context, p *model.FeePayment) error
	ListByStudent(ctx context.Context, studentID string) ([]model.FeePayment, error)
}

// ── FeeRecord Repository 实现 ──

type feeRecordRepo struct {
	db *gorm.DB
}

// NewFeeRecordRepo 创建 FeeRecordRepository 实例
func NewFeeRecordRepo(db *gorm.DB) FeeRecordRepository {
	return &feeRecordRepo{db: db}
}

func (r *feeRecordRepo) GetOrCreate(ctx context.Context, rec *model.FeeRecord) (*model.FeeRecord, error) {
	err := r.db.WithContext(ctx).
		Omit("Student").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "semester"}},
			DoNothing: true,
		}).
		Create(rec).Error
	if err != nil {
		return nil, err
	}
	return r.GetByStudentSemester(ctx, rec.StudentID, rec.Semester)
}

func (r *feeRecordRepo) GetByStudentSemester(ctx context.Context, studentID string, semester int) (*model.FeeRecord, error) {
	var rec model.FeeRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND semester = ?", studentID, semester).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *feeRecordRepo) GetForUpdate(ctx context.Context, studentID string, semester int) (*model.FeeRecord, error) {
	var rec model.FeeRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND semester = ?", studentID, semester).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *feeRecordRepo) Update(ctx context.Context, rec *model.FeeRecord) error {
	oldVersion := rec.Version
	result := r.db.WithContext(ctx).
		Model(&model.FeeRecord{}).
		Where("fee_record_id = ? AND version = ?", rec.FeeRecordID, oldVersion).
		Updates(map[string]interface{}{
			"paid_amount":      rec.PaidAmount,
			"remaining_amount": rec.RemainingAmount,
			"payment_status":   rec.PaymentStatus,
			"is_completed":     rec.IsCompleted,
			"payment_date":     rec.PaymentDate,
			"payment_method":   rec.PaymentMethod,
			"notes":            rec.Notes,
			"recorded_by":      rec.RecordedBy,
			"updated_by":       rec.UpdatedBy,
			"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	rec.Version = oldVersion + 1
	return nil
}

func (r *feeRecordRepo) ListByStudent(ctx context.Context, studentID string, upTo int) ([]model.FeeRecord, error) {
	var list []model.FeeRecord
	db := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if upTo > 0 {
		db = db.Where("semester <= ?", upTo)
	}
	err := db.Order("semester ASC").Find(&list).Error
	return list, err
}

// ── FeePayment Repository 实现 ──

type feePaymentRepo struct {
	db *gorm.DB
}

// NewFeePaymentRepo 创建 FeePaymentRepository 实例
func NewFeePaymentRepo(db *gorm.DB) FeePaymentRepository {
	return &feePaymentRepo{db: db}
}

func (r *feePaymentRepo) Create(ctx context.Context, p *model.FeePayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *feePaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.FeePayment, error) {
	var list []model.FeePayment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("paid_at DESC").
		Find(&list).Error
	return list, err
}
