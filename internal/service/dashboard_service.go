package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
)

// DashboardService 仪表盘汇总，每次请求实时计算，不缓存
type DashboardService interface {
	Admin(ctx context.Context, actor Actor) (*dto.AdminDashboard, error)
	Teacher(ctx context.Context, actor Actor) (*dto.TeacherDashboard, error)
	Student(ctx context.Context, actor Actor) (*dto.StudentDashboard, error)
}

type dashboardService struct {
	repo       *repository.Repository
	attendance AttendanceService
	fee        FeeService
	clock      clock.Clock
	logger     *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(
	repo *repository.Repository,
	attendance AttendanceService,
	fee FeeService,
	clk clock.Clock,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{repo: repo, attendance: attendance, fee: fee, clock: clk, logger: logger}
}

func (s *dashboardService) Admin(ctx context.Context, actor Actor) (*dto.AdminDashboard, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var (
		d   dto.AdminDashboard
		err error
	)
	if d.TotalStudents, err = s.repo.Student.Count(ctx, false); err != nil {
		return nil, s.fail("统计学生失败", err)
	}
	if d.ActiveStudents, err = s.repo.Student.Count(ctx, true); err != nil {
		return nil, s.fail("统计学生失败", err)
	}
	if d.TotalTeachers, err = s.repo.Teacher.Count(ctx, false); err != nil {
		return nil, s.fail("统计教师失败", err)
	}
	if d.TotalSubjects, err = s.repo.Subject.Count(ctx); err != nil {
		return nil, s.fail("统计课程失败", err)
	}

	today, err := s.attendance.DailySummary(ctx, actor, s.clock.Today())
	if err != nil {
		return nil, err
	}
	d.Today = *today
	d.PendingApprovals = today.PendingApproval

	now := s.clock.Now()
	month, year := int(now.Month()), now.Year()
	records, err := s.repo.SalaryRecord.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, s.fail("查询月度工资失败", err)
	}
	sum := summarizeSalaries(month, year, records)
	d.Salary = dto.SalaryMonthSummary{
		Month:        month,
		Year:         year,
		TotalExpense: sum.TotalExpense,
		TotalPaid:    sum.TotalPaid,
		PendingCount: sum.PendingCount,
	}
	return &d, nil
}

func (s *dashboardService) Teacher(ctx context.Context, actor Actor) (*dto.TeacherDashboard, error) {
	if err := requireProfile(actor, model.RoleTeacher); err != nil {
		return nil, err
	}
	person := model.TeacherPerson(actor.ProfileID)

	stats, err := s.attendance.Stats(ctx, actor, person, 0)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.Attendance.Count(ctx, repository.AttendanceFilter{
		PersonType:     model.PersonTeacher,
		PersonID:       actor.ProfileID,
		Status:         model.AttendanceStatusPending,
		SelfMarkedOnly: true,
	})
	if err != nil {
		return nil, s.fail("统计待审核考勤失败", err)
	}

	subjects, err := s.repo.Subject.ListByTeacher(ctx, actor.ProfileID)
	if err != nil {
		return nil, s.fail("查询任课课程失败", err)
	}
	ids := make([]string, 0, len(subjects))
	for _, sub := range subjects {
		ids = append(ids, sub.SubjectID)
	}
	awaiting, err := s.repo.Submission.CountAwaitingReview(ctx, ids)
	if err != nil {
		return nil, s.fail("统计待评审提交失败", err)
	}

	d := &dto.TeacherDashboard{
		Attendance:       stats,
		PendingSelfMarks: pending,
		Subjects:         subjects,
		AwaitingReview:   awaiting,
	}
	rec, err := s.repo.Attendance.GetByPersonDate(ctx, person, s.clock.Today())
	switch {
	case err == nil:
		d.TodayMarked = true
		d.TodayStatus = rec.Status
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, s.fail("查询今日考勤失败", err)
	}
	return d, nil
}

func (s *dashboardService) Student(ctx context.Context, actor Actor) (*dto.StudentDashboard, error) {
	if err := requireProfile(actor, model.RoleStudent); err != nil {
		return nil, err
	}
	student, err := loadStudent(ctx, s.repo, s.logger, actor.ProfileID)
	if err != nil {
		return nil, err
	}

	stats, err := s.attendance.Stats(ctx, actor, model.StudentPerson(student.StudentID), 0)
	if err != nil {
		return nil, err
	}
	fees, err := s.fee.AggregateStatus(ctx, actor, student.StudentID, 0)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.Subject.List(ctx, student.CurrentSemester)
	if err != nil {
		return nil, s.fail("查询课程失败", err)
	}
	byStatus, err := s.repo.Submission.CountByStatusForStudent(ctx, student.StudentID)
	if err != nil {
		return nil, s.fail("统计提交失败", err)
	}

	return &dto.StudentDashboard{
		CurrentSemester: student.CurrentSemester,
		Attendance:      stats,
		Fees:            fees,
		Subjects:        subjects,
		Submissions:     byStatus,
	}, nil
}

func (s *dashboardService) fail(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return err
}
