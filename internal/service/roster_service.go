package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bca-portal/config"
	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
)

// ── 学生 / 教师档案业务错误 ──

var (
	ErrEmailExists     = fmt.Errorf("%w: 邮箱已被使用", ErrConflict)
	ErrProfileExists   = fmt.Errorf("%w: 学号 / 工号或邮箱已存在", ErrConflict)
	ErrInvalidSemester = fmt.Errorf("%w: 学期超出范围", ErrValidation)
	ErrInvalidSalary   = fmt.Errorf("%w: 基本工资不能为负数", ErrValidation)
)

// RosterService 学生 / 教师档案业务接口（管理员维护）
type RosterService interface {
	CreateStudent(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*model.Student, error)
	GetStudent(ctx context.Context, actor Actor, id string) (*model.Student, error)
	ListStudents(ctx context.Context, actor Actor, req *dto.ListStudentsRequest) ([]model.Student, int64, error)
	UpdateStudentSemester(ctx context.Context, actor Actor, id string, semester int) (*model.Student, error)
	SetStudentActive(ctx context.Context, actor Actor, id string, active bool) error

	CreateTeacher(ctx context.Context, actor Actor, req *dto.CreateTeacherRequest) (*model.Teacher, error)
	ListTeachers(ctx context.Context, actor Actor, req *dto.ListTeachersRequest) ([]model.Teacher, int64, error)
	SetTeacherSalary(ctx context.Context, actor Actor, id string, baseSalary *int64) (*model.Teacher, error)
	SetTeacherActive(ctx context.Context, actor Actor, id string, active bool) error
}

type rosterService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterService 创建 RosterService 实例
func NewRosterService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) RosterService {
	return &rosterService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── 学生 ──────────────────────

func (s *rosterService) CreateStudent(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*model.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.CurrentSemester < 1 || req.CurrentSemester > s.cfg.Ledger.MaxSemester {
		return nil, ErrInvalidSemester
	}
	admission, err := clock.ParseDate(req.AdmissionDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	student := &model.Student{
		StudentCode:     req.StudentCode,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Program:         "BCA",
		CurrentSemester: req.CurrentSemester,
		AdmissionDate:   admission,
		IsActive:        true,
		BaseModel:       model.BaseModel{CreatedBy: actor.userRef()},
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Student.Create(ctx, student); err != nil {
			return err
		}
		return tx.User.Create(ctx, &model.User{
			Name:         student.FullName(),
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         model.RoleStudent,
			ProfileID:    model.StrPtr(student.StudentID),
			IsActive:     true,
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRecordExists) {
			return nil, ErrProfileExists
		}
		s.logger.Error("创建学生失败", zap.String("code", req.StudentCode), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生已创建", zap.String("student_id", student.StudentID), zap.String("by", actor.UserID))
	return student, nil
}

func (s *rosterService) GetStudent(ctx context.Context, actor Actor, id string) (*model.Student, error) {
	switch {
	case actor.IsAdmin(), actor.IsTeacher():
	case actor.IsStudent() && actor.ProfileID == id:
	default:
		return nil, ErrAccessDenied
	}
	return s.loadStudent(ctx, id)
}

func (s *rosterService) ListStudents(ctx context.Context, actor Actor, req *dto.ListStudentsRequest) ([]model.Student, int64, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, 0, ErrAccessDenied
	}
	filter := repository.StudentFilter{Search: req.Search, Semester: req.Semester}
	list, total, err := s.repo.Student.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *rosterService) UpdateStudentSemester(ctx context.Context, actor Actor, id string, semester int) (*model.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if semester < 1 || semester > s.cfg.Ledger.MaxSemester {
		return nil, ErrInvalidSemester
	}
	student, err := s.loadStudent(ctx, id)
	if err != nil {
		return nil, err
	}

	student.CurrentSemester = semester
	student.UpdatedBy = actor.userRef()
	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生学期失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

func (s *rosterService) SetStudentActive(ctx context.Context, actor Actor, id string, active bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	student, err := s.loadStudent(ctx, id)
	if err != nil {
		return err
	}
	student.IsActive = active
	student.UpdatedBy = actor.userRef()

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Student.Update(ctx, student); err != nil {
			return err
		}
		return s.syncAccountActive(ctx, tx, student.StudentID, active)
	})
}

// ────────────────────── 教师 ──────────────────────

func (s *rosterService) CreateTeacher(ctx context.Context, actor Actor, req *dto.CreateTeacherRequest) (*model.Teacher, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if req.BaseSalary != nil && *req.BaseSalary < 0 {
		return nil, ErrInvalidSalary
	}
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	teacher := &model.Teacher{
		TeacherCode: req.TeacherCode,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Department:  req.Department,
		Designation: req.Designation,
		BaseSalary:  req.BaseSalary,
		IsActive:    true,
		BaseModel:   model.BaseModel{CreatedBy: actor.userRef()},
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Teacher.Create(ctx, teacher); err != nil {
			return err
		}
		return tx.User.Create(ctx, &model.User{
			Name:         teacher.FullName(),
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         model.RoleTeacher,
			ProfileID:    model.StrPtr(teacher.TeacherID),
			IsActive:     true,
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRecordExists) {
			return nil, ErrProfileExists
		}
		s.logger.Error("创建教师失败", zap.String("code", req.TeacherCode), zap.Error(err))
		return nil, err
	}

	s.logger.Info("教师已创建", zap.String("teacher_id", teacher.TeacherID), zap.String("by", actor.UserID))
	return teacher, nil
}

func (s *rosterService) ListTeachers(ctx context.Context, actor Actor, req *dto.ListTeachersRequest) ([]model.Teacher, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.Teacher.List(ctx, req.Search, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}
	return list, total, nil
}

func (s *rosterService) SetTeacherSalary(ctx context.Context, actor Actor, id string, baseSalary *int64) (*model.Teacher, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if baseSalary != nil && *baseSalary < 0 {
		return nil, ErrInvalidSalary
	}
	teacher, err := s.loadTeacher(ctx, id)
	if err != nil {
		return nil, err
	}

	teacher.BaseSalary = baseSalary
	teacher.UpdatedBy = actor.userRef()
	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		s.logger.Error("更新教师工资失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}

func (s *rosterService) SetTeacherActive(ctx context.Context, actor Actor, id string, active bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	teacher, err := s.loadTeacher(ctx, id)
	if err != nil {
		return err
	}
	teacher.IsActive = active
	teacher.UpdatedBy = actor.userRef()

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Teacher.Update(ctx, teacher); err != nil {
			return err
		}
		return s.syncAccountActive(ctx, tx, teacher.TeacherID, active)
	})
}

// ── 辅助函数 ──

func (s *rosterService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查邮箱失败", zap.Error(err))
		return err
	}
	return nil
}

// syncAccountActive 档案停用时同步停用登录账号；无账号时忽略
func (s *rosterService) syncAccountActive(ctx context.Context, tx *repository.Repository, profileID string, active bool) error {
	user, err := tx.User.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	user.IsActive = active
	return tx.User.Update(ctx, user)
}

func (s *rosterService) loadStudent(ctx context.Context, id string) (*model.Student, error) {
	return loadStudent(ctx, s.repo, s.logger, id)
}

func (s *rosterService) loadTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	return loadTeacher(ctx, s.repo, s.logger, id)
}

// loadStudent 按 ID 读取学生，未找到转换为 ErrStudentNotFound
func loadStudent(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Student, error) {
	student, err := repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return student, nil
}

// loadTeacher 按 ID 读取教师，未找到转换为 ErrTeacherNotFound
func loadTeacher(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Teacher, error) {
	teacher, err := repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return teacher, nil
}
