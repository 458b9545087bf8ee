package repository

import (
	"context"

	"gorm.io/gorm"

	"bca-portal/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	// GetByID 预加载 Subject
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	// ListBySemester 按课程所属学期筛选；status 为空时不限
	ListBySemester(ctx context.Context, semester int, status string) ([]model.Assignment, error)
	ListBySubjects(ctx context.Context, subjectIDs []string) ([]model.Assignment, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("Subject").Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListBySemester(ctx context.Context, semester int, status string) ([]model.Assignment, error) {
	var list []model.Assignment
	db := r.db.WithContext(ctx).
		Preload("Subject").
		Joins("JOIN subjects ON subjects.subject_id = assignments.subject_id").
		Where("subjects.semester = ?", semester)
	if status != "" {
		db = db.Where("assignments.status = ?", status)
	}
	err := db.Order("assignments.due_date ASC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListBySubjects(ctx context.Context, subjectIDs []string) ([]model.Assignment, error) {
	var list []model.Assignment
	if len(subjectIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Where("subject_id IN ?", subjectIDs).
		Order("due_date DESC").
		Find(&list).Error
	return list, err
}
