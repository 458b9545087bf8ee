package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// SalaryRecordRepository 教师工资数据访问接口
type SalaryRecordRepository interface {
	// CreateIfAbsent INSERT ... ON CONFLICT DO NOTHING，返回是否实际插入
	CreateIfAbsent(ctx context.Context, rec *model.SalaryRecord) (bool, error)
	GetByID(ctx context.Context, id string) (*model.SalaryRecord, error)
	GetByTeacherPeriod(ctx context.Context, teacherID string, month, year int) (*model.SalaryRecord, error)
	// MarkPaid 仅当记录仍为 pending 时写入发放信息，否则返回 ErrOptimisticLock
	MarkPaid(ctx context.Context, rec *model.SalaryRecord) error
	ListByPeriod(ctx context.Context, month, year int) ([]model.SalaryRecord, error)
	ListPaidByTeacher(ctx context.Context, teacherID string) ([]model.SalaryRecord, error)
}

type salaryRecordRepo struct {
	db *gorm.DB
}

// NewSalaryRecordRepo 创建 SalaryRecordRepository 实例
func NewSalaryRecordRepo(db *gorm.DB) SalaryRecordRepository {
	return &salaryRecordRepo{db: db}
}

func (r *salaryRecordRepo) CreateIfAbsent(ctx context.Context, rec *model.SalaryRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("Teacher").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "teacher_id"}, {Name: "month"}, {Name: "year"}},
			DoNothing: true,
		}).
		Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *salaryRecordRepo) GetByID(ctx context.Context, id string) (*model.SalaryRecord, error) {
	var rec model.SalaryRecord
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("salary_record_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *salaryRecordRepo) GetByTeacherPeriod(ctx context.Context, teacherID string, month, year int) (*model.SalaryRecord, error) {
	var rec model.SalaryRecord
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND month = ? AND year = ?", teacherID, month, year).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *salaryRecordRepo) MarkPaid(ctx context.Context, rec *model.SalaryRecord) error {
	result := r.db.WithContext(ctx).
		Model(&model.SalaryRecord{}).
		Where("salary_record_id = ? AND payment_status = ?", rec.SalaryRecordID, model.SalaryStatusPending).
		Updates(map[string]interface{}{
			"bonus":          rec.Bonus,
			"deductions":     rec.Deductions,
			"net_salary":     rec.NetSalary,
			"payment_status": rec.PaymentStatus,
			"is_paid":        rec.IsPaid,
			"payment_date":   rec.PaymentDate,
			"payment_method": rec.PaymentMethod,
			"notes":          rec.Notes,
			"processed_by":   rec.ProcessedBy,
			"updated_by":     rec.UpdatedBy,
			"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *salaryRecordRepo) ListByPeriod(ctx context.Context, month, year int) ([]model.SalaryRecord, error) {
	var list []model.SalaryRecord
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("month = ? AND year = ?", month, year).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *salaryRecordRepo) ListPaidByTeacher(ctx context.Context, teacherID string) ([]model.SalaryRecord, error) {
	var list []model.SalaryRecord
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND is_paid = ?", teacherID, true).
		Order("year DESC, month DESC").
		Find(&list).Error
	return list, err
}
