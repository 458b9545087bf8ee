package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// StudentFilter 学生列表筛选条件
type StudentFilter struct {
	Search     string // 匹配姓名、学号、邮箱
	Semester   int    // 0 表示不限
	ActiveOnly bool
}

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	// List limit <= 0 时不分页
	List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	if err := r.db.WithContext(ctx).Create(student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrRecordExists
		}
		return err
	}
	return nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR student_code ILIKE ? OR email ILIKE ?",
			like, like, like, like)
	}
	if filter.Semester > 0 {
		db = db.Where("current_semester = ?", filter.Semester)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("student_code ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.Student{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Count(&n).Error
	return n, err
}
