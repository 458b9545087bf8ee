package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bca-portal/internal/model"
	pkgerrors "bca-portal/pkg/errors"
)

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	// GetByID 预加载 Assignment.Subject 与 Student
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	Update(ctx context.Context, sub *model.Submission) error
	Delete(ctx context.Context, id string) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error)
	// CountAwaitingReview 统计给定课程下 submitted / late 的提交数
	CountAwaitingReview(ctx context.Context, subjectIDs []string) (int64, error)
	// CountByStatusForStudent 按状态分组统计学生的提交
	CountByStatusForStudent(ctx context.Context, studentID string) (map[string]int64, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

// Create (assignment_id, student_id) 冲突时返回 ErrRecordExists
func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	if err := r.db.WithContext(ctx).Omit("Assignment", "Student").Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.ErrRecordExists
		}
		return err
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").Preload("Assignment.Subject").
		Preload("Student").
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(map[string]interface{}{
			"status":           sub.Status,
			"marks_obtained":   sub.MarksObtained,
			"feedback":         sub.Feedback,
			"teacher_comments": sub.TeacherComments,
			"rejection_reason": sub.RejectionReason,
			"reviewed_by":      sub.ReviewedBy,
			"reviewed_date":    sub.ReviewedDate,
			"graded_by":        sub.GradedBy,
			"graded_date":      sub.GradedDate,
			"updated_by":       sub.UpdatedBy,
			"updated_at":       gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *submissionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		Delete(&model.Submission{}).Error
}

func (r *submissionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	var list []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id = ?", assignmentID).
		Order("submission_date ASC").
		Find(&list).Error
	return list, err
}

func (r *submissionRepo) CountAwaitingReview(ctx context.Context, subjectIDs []string) (int64, error) {
	var n int64
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Joins("JOIN assignments ON assignments.assignment_id = assignment_submissions.assignment_id").
		Where("assignments.subject_id IN ?", subjectIDs).
		Where("assignment_submissions.status IN ?", []string{
			model.SubmissionStatusSubmitted, model.SubmissionStatusLate,
		}).
		Count(&n).Error
	return n, err
}

func (r *submissionRepo) CountByStatusForStudent(ctx context.Context, studentID string) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Select("status, COUNT(*) AS count").
		Where("student_id = ?", studentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
