package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/config"
	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
)

// ── 课程 / 作业业务错误 ──

var (
	ErrCrossSemester     = fmt.Errorf("%w: 只能访问当前学期的课程内容", ErrAccessDenied)
	ErrNotSubjectTeacher = fmt.Errorf("%w: 仅任课教师可操作该课程", ErrAccessDenied)
	ErrInvalidDueDate    = fmt.Errorf("%w: 截止时间格式无效", ErrValidation)
)

// CourseService 课程与作业业务接口
type CourseService interface {
	CreateSubject(ctx context.Context, actor Actor, req *dto.CreateSubjectRequest) (*model.Subject, error)
	// ListSubjects 学生只能看到当前学期的课程；教师 mine=true 时只看自己负责的课程
	ListSubjects(ctx context.Context, actor Actor, semester int, mine bool) ([]model.Subject, error)
	AssignTeacher(ctx context.Context, actor Actor, subjectID, teacherID string) (*model.Subject, error)

	CreateAssignment(ctx context.Context, actor Actor, req *dto.CreateAssignmentRequest) (*model.Assignment, error)
	// ListAssignments 学生：当前学期的进行中作业；教师：自己课程的作业；管理员：全部学期需指定 semester
	ListAssignments(ctx context.Context, actor Actor, semester int) ([]model.Assignment, error)
	GetAssignment(ctx context.Context, actor Actor, id string) (*model.Assignment, error)
}

type courseService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── 课程 ──────────────────────

func (s *courseService) CreateSubject(ctx context.Context, actor Actor, req *dto.CreateSubjectRequest) (*model.Subject, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.Semester < 1 || req.Semester > s.cfg.Ledger.MaxSemester {
		return nil, ErrInvalidSemester
	}
	credits := req.Credits
	if credits == 0 {
		credits = 3
	}

	subject := &model.Subject{
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      req.Name,
		Semester:  req.Semester,
		Credits:   credits,
		BaseModel: model.BaseModel{CreatedBy: actor.userRef()},
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建课程失败", zap.String("code", subject.Code), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

func (s *courseService) ListSubjects(ctx context.Context, actor Actor, semester int, mine bool) ([]model.Subject, error) {
	switch {
	case actor.IsStudent():
		student, err := s.currentStudent(ctx, actor)
		if err != nil {
			return nil, err
		}
		if semester != 0 && semester != student.CurrentSemester {
			return nil, ErrCrossSemester
		}
		semester = student.CurrentSemester
	case actor.IsTeacher() && mine:
		if err := requireProfile(actor, model.RoleTeacher); err != nil {
			return nil, err
		}
		return s.repo.Subject.ListByTeacher(ctx, actor.ProfileID)
	}

	list, err := s.repo.Subject.List(ctx, semester)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *courseService) AssignTeacher(ctx context.Context, actor Actor, subjectID, teacherID string) (*model.Subject, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	subject.AssignedTeacherID = nil
	subject.AssignedTeacher = nil
	if teacherID != "" {
		teacher, err := loadTeacher(ctx, s.repo, s.logger, teacherID)
		if err != nil {
			return nil, err
		}
		if !teacher.IsActive {
			return nil, validationErr("教师已停用")
		}
		subject.AssignedTeacherID = &teacher.TeacherID
		subject.AssignedTeacher = teacher
	}

	subject.UpdatedBy = actor.userRef()
	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("分配任课教师失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

// ────────────────────── 作业 ──────────────────────

func (s *courseService) CreateAssignment(ctx context.Context, actor Actor, req *dto.CreateAssignmentRequest) (*model.Assignment, error) {
	subject, err := s.loadSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		if !subject.OwnedBy(actor.ProfileID) {
			return nil, ErrNotSubjectTeacher
		}
	default:
		return nil, ErrAccessDenied
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.AssignmentStatusActive
	}
	maxMarks := req.MaxMarks
	if maxMarks == 0 {
		maxMarks = 100
	}

	a := &model.Assignment{
		SubjectID:   subject.SubjectID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     due,
		MaxMarks:    maxMarks,
		Status:      status,
		BaseModel:   model.BaseModel{CreatedBy: actor.userRef()},
	}
	if a.Title == "" {
		return nil, validationErr("作业标题不能为空")
	}
	if err := s.repo.Assignment.Create(ctx, a); err != nil {
		s.logger.Error("创建作业失败", zap.String("subject_id", subject.SubjectID), zap.Error(err))
		return nil, err
	}
	a.Subject = subject
	return a, nil
}

func (s *courseService) ListAssignments(ctx context.Context, actor Actor, semester int) ([]model.Assignment, error) {
	switch {
	case actor.IsStudent():
		student, err := s.currentStudent(ctx, actor)
		if err != nil {
			return nil, err
		}
		return s.repo.Assignment.ListBySemester(ctx, student.CurrentSemester, model.AssignmentStatusActive)
	case actor.IsTeacher():
		if err := requireProfile(actor, model.RoleTeacher); err != nil {
			return nil, err
		}
		subjects, err := s.repo.Subject.ListByTeacher(ctx, actor.ProfileID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(subjects))
		for _, sub := range subjects {
			ids = append(ids, sub.SubjectID)
		}
		return s.repo.Assignment.ListBySubjects(ctx, ids)
	case actor.IsAdmin():
		if semester < 1 || semester > s.cfg.Ledger.MaxSemester {
			return nil, ErrInvalidSemester
		}
		return s.repo.Assignment.ListBySemester(ctx, semester, "")
	}
	return nil, ErrAccessDenied
}

func (s *courseService) GetAssignment(ctx context.Context, actor Actor, id string) (*model.Assignment, error) {
	a, err := loadAssignment(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		if a.Subject == nil || !a.Subject.OwnedBy(actor.ProfileID) {
			return nil, ErrNotSubjectTeacher
		}
	case actor.IsStudent():
		student, err := s.currentStudent(ctx, actor)
		if err != nil {
			return nil, err
		}
		if err := checkSemester(a, student); err != nil {
			return nil, err
		}
	default:
		return nil, ErrAccessDenied
	}
	return a, nil
}

// ── 辅助函数 ──

func (s *courseService) currentStudent(ctx context.Context, actor Actor) (*model.Student, error) {
	if err := requireProfile(actor, model.RoleStudent); err != nil {
		return nil, err
	}
	return loadStudent(ctx, s.repo, s.logger, actor.ProfileID)
}

func (s *courseService) loadSubject(ctx context.Context, id string) (*model.Subject, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return subject, nil
}

// loadAssignment 读取作业（含课程）
func loadAssignment(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Assignment, error) {
	a, err := repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		logger.Error("查询作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

// checkSemester 作业所属课程学期必须等于学生当前学期
func checkSemester(a *model.Assignment, student *model.Student) error {
	if a.Subject == nil || a.Subject.Semester != student.CurrentSemester {
		return ErrCrossSemester
	}
	return nil
}

// parseDueDate 接受 RFC3339；仅日期时取当天 23:59:59 UTC
func parseDueDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	d, err := clock.ParseDate(v)
	if err != nil {
		return time.Time{}, ErrInvalidDueDate
	}
	return d.Add(24*time.Hour - time.Second), nil
}
