package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// TeacherRepository 教师档案数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	List(ctx context.Context, search string, offset, limit int) ([]model.Teacher, int64, error)
	// ListActiveWithSalary 在职且已配置基本工资的教师
	ListActiveWithSalary(ctx context.Context) ([]model.Teacher, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	if err := r.db.WithContext(ctx).Create(teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrRecordExists
		}
		return err
	}
	return nil
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if len(ids) == 0 {
		return teachers, nil
	}
	err := r.db.WithContext(ctx).
		Where("teacher_id IN ?", ids).
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

func (r *teacherRepo) List(ctx context.Context, search string, offset, limit int) ([]model.Teacher, int64, error) {
	var teachers []model.Teacher
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Teacher{})
	if search != "" {
		like := "%" + search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR teacher_code ILIKE ? OR department ILIKE ?",
			like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("teacher_code ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&teachers).Error; err != nil {
		return nil, 0, err
	}
	return teachers, total, nil
}

func (r *teacherRepo) ListActiveWithSalary(ctx context.Context) ([]model.Teacher, error) {
	var teachers []model.Teacher
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND base_salary IS NOT NULL AND base_salary > 0", true).
		Order("teacher_code ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *teacherRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var n int64
	db := r.db.WithContext(ctx).Model(&model.Teacher{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Count(&n).Error
	return n, err
}
