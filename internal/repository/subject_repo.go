package repository

import (
	"context"

	"gorm.io/gorm"

	"bca-portal/internal/model"
)

// SubjectRepository 课程数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	Update(ctx context.Context, subject *model.Subject) error
	// List semester 为 0 时返回全部
	List(ctx context.Context, semester int) ([]model.Subject, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]model.Subject, error)
	Count(ctx context.Context) (int64, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("AssignedTeacher").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).
		Model(subject).
		Omit("AssignedTeacher").
		Updates(map[string]interface{}{
			"name":                subject.Name,
			"credits":             subject.Credits,
			"assigned_teacher_id": subject.AssignedTeacherID,
			"updated_by":          subject.UpdatedBy,
		}).Error
}

func (r *subjectRepo) List(ctx context.Context, semester int) ([]model.Subject, error) {
	var subjects []model.Subject
	db := r.db.WithContext(ctx).Preload("AssignedTeacher")
	if semester > 0 {
		db = db.Where("semester = ?", semester)
	}
	err := db.Order("semester ASC, code ASC").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Where("assigned_teacher_id = ?", teacherID).
		Order("semester ASC, code ASC").
		Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Subject{}).Count(&n).Error
	return n, err
}
