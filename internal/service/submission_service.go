package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
	"bca-portal/pkg/metrics"
)

// ── 作业提交业务错误 ──

var (
	ErrSubmissionNotFound   = fmt.Errorf("%w: 提交记录不存在", ErrNotFound)
	ErrAlreadySubmitted     = fmt.Errorf("%w: 该作业已提交，等待评审", ErrDuplicateSubmission)
	ErrEmptySubmission      = fmt.Errorf("%w: 提交内容与附件至少填写一项", ErrValidation)
	ErrReasonRequired       = fmt.Errorf("%w: 驳回原因不能为空", ErrValidation)
	ErrInvalidMarks         = fmt.Errorf("%w: 分数超出范围", ErrValidation)
	ErrAssignmentNotActive  = fmt.Errorf("%w: 作业未开放提交", ErrInvalidState)
	ErrSubmissionNotPending = fmt.Errorf("%w: 仅待评审的提交可审批", ErrInvalidState)
	ErrSubmissionNotGraded  = fmt.Errorf("%w: 仅已评分的提交可退回", ErrInvalidState)
	ErrNotReviewer          = fmt.Errorf("%w: 仅管理员或任课教师可评审", ErrAccessDenied)
)

// SubmissionService 作业提交业务接口
type SubmissionService interface {
	// Submit 学生提交；被驳回的旧提交在同一事务中删除后重建
	Submit(ctx context.Context, actor Actor, assignmentID string, req *dto.SubmitRequest) (*model.Submission, error)
	Approve(ctx context.Context, actor Actor, id, comments string) (*model.Submission, error)
	// Reject reason 为空时直接返回校验错误，不读取记录
	Reject(ctx context.Context, actor Actor, id, reason, feedback string) (*model.Submission, error)
	Grade(ctx context.Context, actor Actor, id string, marks int, feedback string) (*model.Submission, error)
	Return(ctx context.Context, actor Actor, id string) (*model.Submission, error)

	Get(ctx context.Context, actor Actor, id string) (*model.Submission, error)
	GetMine(ctx context.Context, actor Actor, assignmentID string) (*model.Submission, error)
	ListForAssignment(ctx context.Context, actor Actor, assignmentID string) ([]model.Submission, error)
}

type submissionService struct {
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, clk clock.Clock, m *metrics.Metrics, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *submissionService) Submit(ctx context.Context, actor Actor, assignmentID string, req *dto.SubmitRequest) (*model.Submission, error) {
	if err := requireProfile(actor, model.RoleStudent); err != nil {
		return nil, err
	}
	student, err := loadStudent(ctx, s.repo, s.logger, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	a, err := loadAssignment(ctx, s.repo, s.logger, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := checkSemester(a, student); err != nil {
		return nil, err
	}
	if a.Status != model.AssignmentStatusActive {
		return nil, ErrAssignmentNotActive
	}

	text := strings.TrimSpace(req.SubmissionText)
	fileRef := strings.TrimSpace(req.FileRef)
	if text == "" && fileRef == "" {
		return nil, ErrEmptySubmission
	}

	now := s.clock.Now()
	isLate := a.IsLateAt(now)
	sub := &model.Submission{
		AssignmentID:   a.AssignmentID,
		StudentID:      student.StudentID,
		SubmissionText: text,
		FileRef:        fileRef,
		SubmissionDate: now,
		Status:         model.InitialSubmissionStatus(isLate),
		IsLate:         isLate,
		BaseModel:      model.BaseModel{CreatedBy: actor.userRef()},
	}

	resubmitted := false
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Submission.GetByAssignmentAndStudent(ctx, a.AssignmentID, student.StudentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			if existing.Status != model.SubmissionStatusRejected {
				return ErrAlreadySubmitted
			}
			if err := tx.Submission.Delete(ctx, existing.SubmissionID); err != nil {
				return err
			}
			resubmitted = true
		}
		// 并发提交由唯一索引兜底
		if err := tx.Submission.Create(ctx, sub); err != nil {
			if errors.Is(err, pkgerrors.ErrRecordExists) {
				return ErrAlreadySubmitted
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrDuplicateSubmission) {
			s.logger.Error("提交作业失败",
				zap.String("assignment_id", assignmentID), zap.String("student_id", student.StudentID), zap.Error(err))
		}
		return nil, err
	}

	if resubmitted {
		s.metrics.SubmissionEvent("resubmitted")
	} else {
		s.metrics.SubmissionEvent(sub.Status)
	}
	sub.Assignment = a
	return sub, nil
}

// ────────────────────── 评审 ──────────────────────

func (s *submissionService) Approve(ctx context.Context, actor Actor, id, comments string) (*model.Submission, error) {
	sub, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !sub.AwaitingReview() {
		return nil, ErrSubmissionNotPending
	}

	now := s.clock.Now()
	sub.Status = model.SubmissionStatusApproved
	sub.TeacherComments = comments
	sub.ReviewedBy = actor.userRef()
	sub.ReviewedDate = &now
	return s.save(ctx, actor, sub)
}

func (s *submissionService) Reject(ctx context.Context, actor Actor, id, reason, feedback string) (*model.Submission, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	sub, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !sub.AwaitingReview() {
		return nil, ErrSubmissionNotPending
	}

	now := s.clock.Now()
	sub.Status = model.SubmissionStatusRejected
	sub.RejectionReason = reason
	sub.Feedback = feedback
	sub.ReviewedBy = actor.userRef()
	sub.ReviewedDate = &now
	return s.save(ctx, actor, sub)
}

func (s *submissionService) Grade(ctx context.Context, actor Actor, id string, marks int, feedback string) (*model.Submission, error) {
	if marks < 0 {
		return nil, ErrInvalidMarks
	}
	sub, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sub.Assignment != nil && sub.Assignment.MaxMarks > 0 && marks > sub.Assignment.MaxMarks {
		return nil, ErrInvalidMarks
	}
	if !sub.Gradable() {
		return nil, ErrSubmissionNotPending
	}

	now := s.clock.Now()
	sub.Status = model.SubmissionStatusGraded
	sub.MarksObtained = &marks
	if feedback != "" {
		sub.Feedback = feedback
	}
	sub.GradedBy = actor.userRef()
	sub.GradedDate = &now
	return s.save(ctx, actor, sub)
}

func (s *submissionService) Return(ctx context.Context, actor Actor, id string) (*model.Submission, error) {
	sub, err := s.loadForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubmissionStatusGraded {
		return nil, ErrSubmissionNotGraded
	}
	sub.Status = model.SubmissionStatusReturned
	return s.save(ctx, actor, sub)
}

func (s *submissionService) save(ctx context.Context, actor Actor, sub *model.Submission) (*model.Submission, error) {
	sub.UpdatedBy = actor.userRef()
	if err := s.repo.Submission.Update(ctx, sub); err != nil {
		s.logger.Error("更新提交失败", zap.String("id", sub.SubmissionID), zap.Error(err))
		return nil, err
	}
	s.metrics.SubmissionEvent(sub.Status)
	return sub, nil
}

// loadForReview 读取提交并校验评审人：管理员或作业所属课程的任课教师
func (s *submissionService) loadForReview(ctx context.Context, actor Actor, id string) (*model.Submission, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, ErrNotReviewer
	}
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsTeacher() && !ownsSubmission(actor, sub) {
		return nil, ErrNotReviewer
	}
	return sub, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *submissionService) Get(ctx context.Context, actor Actor, id string) (*model.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		if !ownsSubmission(actor, sub) {
			return nil, ErrNotSubjectTeacher
		}
	case actor.IsStudent():
		if actor.ProfileID == "" || sub.StudentID != actor.ProfileID {
			return nil, ErrAccessDenied
		}
	default:
		return nil, ErrAccessDenied
	}
	return sub, nil
}

func (s *submissionService) GetMine(ctx context.Context, actor Actor, assignmentID string) (*model.Submission, error) {
	if err := requireProfile(actor, model.RoleStudent); err != nil {
		return nil, err
	}
	student, err := loadStudent(ctx, s.repo, s.logger, actor.ProfileID)
	if err != nil {
		return nil, err
	}
	a, err := loadAssignment(ctx, s.repo, s.logger, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := checkSemester(a, student); err != nil {
		return nil, err
	}

	sub, err := s.repo.Submission.GetByAssignmentAndStudent(ctx, assignmentID, student.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	sub.Assignment = a
	return sub, nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, actor Actor, assignmentID string) ([]model.Submission, error) {
	a, err := loadAssignment(ctx, s.repo, s.logger, assignmentID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		if a.Subject == nil || !a.Subject.OwnedBy(actor.ProfileID) {
			return nil, ErrNotSubjectTeacher
		}
	default:
		return nil, ErrAccessDenied
	}

	list, err := s.repo.Submission.ListByAssignment(ctx, assignmentID)
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

// ── 辅助函数 ──

func (s *submissionService) load(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := s.repo.Submission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

func ownsSubmission(actor Actor, sub *model.Submission) bool {
	return sub.Assignment != nil && sub.Assignment.Subject != nil && sub.Assignment.Subject.OwnedBy(actor.ProfileID)
}
