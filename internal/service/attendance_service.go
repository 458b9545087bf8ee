package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bca-portal/config"
	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/repository"
	"bca-portal/pkg/clock"
	pkgerrors "bca-portal/pkg/errors"
	"bca-portal/pkg/metrics"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceNotFound      = fmt.Errorf("%w: 考勤记录不存在", ErrNotFound)
	ErrAttendanceNotReviewable = fmt.Errorf("%w: 仅待审核的教师自助考勤可审批", ErrInvalidState)
	ErrSelfMarkLocked          = fmt.Errorf("%w: 当日考勤已生效，不能再自助修改", ErrInvalidState)
	ErrInvalidPerson           = fmt.Errorf("%w: 考勤对象无效", ErrValidation)
	ErrInvalidRange            = fmt.Errorf("%w: 起始日期不能晚于结束日期", ErrValidation)
	ErrAttendanceConflict      = fmt.Errorf("%w: 当日考勤正被同时登记，请刷新后重试", ErrConflict)
)

// attendanceWriteErr 唯一索引冲突转换为 ErrAttendanceConflict
func attendanceWriteErr(err error) error {
	if errors.Is(err, pkgerrors.ErrRecordExists) {
		return ErrAttendanceConflict
	}
	return err
}

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// Mark 管理员标记学生 / 教师，教师标记学生；替换当日已有记录，状态为 auto_approved
	Mark(ctx context.Context, actor Actor, person model.Person, date time.Time, isPresent bool, notes string) (*model.Attendance, error)
	// MarkStudents 批量标记学生，不存在或已停用的学生跳过
	MarkStudents(ctx context.Context, actor Actor, date time.Time, entries []dto.StudentMarkEntry) (*dto.MarkStudentsResponse, error)
	// SelfMark 教师自助考勤；date 为零值时取今天
	SelfMark(ctx context.Context, actor Actor, date time.Time, isPresent bool, notes string) (*model.Attendance, error)
	Approve(ctx context.Context, actor Actor, id, adminNotes string) (*model.Attendance, error)
	Reject(ctx context.Context, actor Actor, id, adminNotes string) (*model.Attendance, error)
	// Stats 统计 [today-windowDays, today]；windowDays <= 0 时取配置默认值
	Stats(ctx context.Context, actor Actor, person model.Person, windowDays int) (*model.AttendanceStats, error)

	// ListForReview status 取 pending / approved / rejected / all；date 为空时取最近 N 天
	ListForReview(ctx context.Context, actor Actor, status string, date *time.Time) (*dto.AttendanceReviewResponse, error)
	DailySummary(ctx context.Context, actor Actor, date time.Time) (*dto.DailySummaryResponse, error)
	Report(ctx context.Context, actor Actor, personType string, from, to time.Time) ([]dto.AttendanceReportRow, error)
	ListForPerson(ctx context.Context, actor Actor, person model.Person, days int) ([]model.Attendance, error)
	// ExportCalendar 导出 iCalendar，返回内容与建议文件名
	ExportCalendar(ctx context.Context, actor Actor, person model.Person, from, to time.Time) ([]byte, string, error)
}

type attendanceService struct {
	cfg     *config.Config
	repo    *repository.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(
	cfg *config.Config,
	repo *repository.Repository,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{cfg: cfg, repo: repo, clock: clk, metrics: m, logger: logger}
}

// ────────────────────── Mark ──────────────────────

func (s *attendanceService) Mark(ctx context.Context, actor Actor, person model.Person, date time.Time, isPresent bool, notes string) (*model.Attendance, error) {
	if !person.Valid() {
		return nil, ErrInvalidPerson
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher() && person.Type == model.PersonStudent:
	default:
		return nil, ErrAccessDenied
	}
	date = clock.DateOf(date)
	if date.After(s.clock.Today()) {
		return nil, ErrFutureDate
	}
	if err := s.ensurePerson(ctx, person); err != nil {
		return nil, err
	}

	rec := s.newRecord(actor, person, date, isPresent, notes, false)
	if err := s.repo.Attendance.Replace(ctx, rec); err != nil {
		err = attendanceWriteErr(err)
		if !errors.Is(err, ErrConflict) {
			s.logger.Error("保存考勤失败",
				zap.String("person", person.ID), zap.Time("date", date), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.AttendanceMark("marked", 1)
	return rec, nil
}

func (s *attendanceService) MarkStudents(ctx context.Context, actor Actor, date time.Time, entries []dto.StudentMarkEntry) (*dto.MarkStudentsResponse, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, ErrAccessDenied
	}
	date = clock.DateOf(date)
	if date.After(s.clock.Today()) {
		return nil, ErrFutureDate
	}
	if len(entries) == 0 {
		return nil, validationErr("点名列表不能为空")
	}

	result := &dto.MarkStudentsResponse{Skipped: []string{}}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, e := range entries {
			student, err := tx.Student.GetByID(ctx, e.StudentID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					result.Skipped = append(result.Skipped, e.StudentID)
					continue
				}
				return err
			}
			if !student.IsActive {
				result.Skipped = append(result.Skipped, e.StudentID)
				continue
			}

			rec := s.newRecord(actor, model.StudentPerson(student.StudentID), date, e.IsPresent, e.Notes, false)
			if err := tx.Attendance.Replace(ctx, rec); err != nil {
				return attendanceWriteErr(err)
			}
			if e.IsPresent {
				result.Present++
			} else {
				result.Absent++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("批量点名失败", zap.Time("date", date), zap.Error(err))
		return nil, err
	}

	s.metrics.AttendanceMark("marked", result.Present+result.Absent)
	return result, nil
}

// ────────────────────── SelfMark ──────────────────────

func (s *attendanceService) SelfMark(ctx context.Context, actor Actor, date time.Time, isPresent bool, notes string) (*model.Attendance, error) {
	if err := requireProfile(actor, model.RoleTeacher); err != nil {
		return nil, err
	}
	today := s.clock.Today()
	if date.IsZero() {
		date = today
	}
	date = clock.DateOf(date)
	if date.After(today) {
		return nil, ErrFutureDate
	}

	person := model.TeacherPerson(actor.ProfileID)
	if err := s.ensurePerson(ctx, person); err != nil {
		return nil, err
	}

	var out *model.Attendance
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.Attendance.GetByPersonDate(ctx, person, date)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing == nil {
			out = s.newRecord(actor, person, date, isPresent, notes, true)
			return attendanceWriteErr(tx.Attendance.Create(ctx, out))
		}

		if !existing.SelfMarkEditable() {
			return ErrSelfMarkLocked
		}
		existing.IsPresent = isPresent
		existing.Notes = notes
		existing.SelfMarked = true
		existing.Status = model.AttendanceStatusPending
		existing.MarkedBy = actor.userRef()
		existing.MarkedAt = s.clock.Now()
		existing.ApprovedBy = nil
		existing.ApprovedAt = nil
		existing.AdminNotes = ""
		existing.UpdatedBy = actor.userRef()
		out = existing
		return tx.Attendance.Update(ctx, existing)
	})
	if err != nil {
		if !errors.Is(err, ErrSelfMarkLocked) && !errors.Is(err, ErrConflict) {
			s.logger.Error("自助考勤失败", zap.String("teacher_id", actor.ProfileID), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.AttendanceMark("self_marked", 1)
	return out, nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *attendanceService) Approve(ctx context.Context, actor Actor, id, adminNotes string) (*model.Attendance, error) {
	return s.review(ctx, actor, id, adminNotes, model.AttendanceStatusApproved)
}

func (s *attendanceService) Reject(ctx context.Context, actor Actor, id, adminNotes string) (*model.Attendance, error) {
	return s.review(ctx, actor, id, adminNotes, model.AttendanceStatusRejected)
}

// review 已审批的记录再次审批返回 ErrAttendanceNotReviewable，不做任何修改
func (s *attendanceService) review(ctx context.Context, actor Actor, id, adminNotes, status string) (*model.Attendance, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	rec, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !rec.Reviewable() {
		s.logger.Info("忽略对非待审核考勤的审批",
			zap.String("id", id), zap.String("status", rec.Status), zap.String("by", actor.UserID))
		return nil, ErrAttendanceNotReviewable
	}

	now := s.clock.Now()
	rec.Status = status
	rec.ApprovedBy = actor.userRef()
	rec.ApprovedAt = &now
	rec.AdminNotes = adminNotes
	rec.UpdatedBy = actor.userRef()

	if err := s.repo.Attendance.Update(ctx, rec); err != nil {
		s.logger.Error("更新考勤审批失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.metrics.AttendanceMark(status, 1)
	return rec, nil
}

// ────────────────────── Stats ──────────────────────

func (s *attendanceService) Stats(ctx context.Context, actor Actor, person model.Person, windowDays int) (*model.AttendanceStats, error) {
	if !person.Valid() {
		return nil, ErrInvalidPerson
	}
	if err := canView(actor, person); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = s.cfg.Attendance.StatsWindowDays
	}

	to := s.clock.Today()
	from := to.AddDate(0, 0, -windowDays)
	total, present, err := s.repo.Attendance.CountInRange(ctx, person, from, to)
	if err != nil {
		s.logger.Error("统计考勤失败", zap.String("person", person.ID), zap.Error(err))
		return nil, err
	}

	stats := model.NewAttendanceStats(total, present)
	return &stats, nil
}

// ────────────────────── 查询 / 汇总 ──────────────────────

func (s *attendanceService) ListForReview(ctx context.Context, actor Actor, status string, date *time.Time) (*dto.AttendanceReviewResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	switch status {
	case "":
		status = model.AttendanceStatusPending
	case "all":
		status = ""
	}

	to := s.clock.Today()
	from := to.AddDate(0, 0, -s.cfg.Attendance.ReviewWindowDays)
	if date != nil {
		from = clock.DateOf(*date)
		to = from
	}

	records, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		PersonType:     model.PersonTeacher,
		Status:         status,
		SelfMarkedOnly: true,
		From:           &from,
		To:             &to,
	})
	if err != nil {
		s.logger.Error("查询待审核考勤失败", zap.Error(err))
		return nil, err
	}

	pending, err := s.countPending(ctx, "")
	if err != nil {
		return nil, err
	}

	return &dto.AttendanceReviewResponse{
		Records:      records,
		PendingCount: pending,
		From:         from.Format("2006-01-02"),
		To:           to.Format("2006-01-02"),
	}, nil
}

func (s *attendanceService) DailySummary(ctx context.Context, actor Actor, date time.Time) (*dto.DailySummaryResponse, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, ErrAccessDenied
	}
	if date.IsZero() {
		date = s.clock.Today()
	}
	return s.dailySummary(ctx, clock.DateOf(date))
}

func (s *attendanceService) dailySummary(ctx context.Context, date time.Time) (*dto.DailySummaryResponse, error) {
	studentTotal, err := s.repo.Student.Count(ctx, true)
	if err != nil {
		return nil, err
	}
	teacherTotal, err := s.repo.Teacher.Count(ctx, true)
	if err != nil {
		return nil, err
	}

	students, err := s.personSummary(ctx, model.PersonStudent, date, studentTotal)
	if err != nil {
		return nil, err
	}
	teachers, err := s.personSummary(ctx, model.PersonTeacher, date, teacherTotal)
	if err != nil {
		return nil, err
	}
	pending, err := s.countPending(ctx, "")
	if err != nil {
		return nil, err
	}

	return &dto.DailySummaryResponse{
		Date:            date.Format("2006-01-02"),
		Students:        students,
		Teachers:        teachers,
		PendingApproval: pending,
	}, nil
}

func (s *attendanceService) personSummary(ctx context.Context, personType string, date time.Time, total int64) (dto.DailyPersonSummary, error) {
	yes, no := true, false
	present, err := s.repo.Attendance.Count(ctx, repository.AttendanceFilter{
		PersonType: personType, Present: &yes, From: &date, To: &date,
	})
	if err != nil {
		s.logger.Error("统计当日考勤失败", zap.String("type", personType), zap.Error(err))
		return dto.DailyPersonSummary{}, err
	}
	absent, err := s.repo.Attendance.Count(ctx, repository.AttendanceFilter{
		PersonType: personType, Present: &no, From: &date, To: &date,
	})
	if err != nil {
		s.logger.Error("统计当日考勤失败", zap.String("type", personType), zap.Error(err))
		return dto.DailyPersonSummary{}, err
	}

	notMarked := total - present - absent
	if notMarked < 0 {
		notMarked = 0
	}
	return dto.DailyPersonSummary{Total: total, Present: present, Absent: absent, NotMarked: notMarked}, nil
}

// countPending 待审核的教师自助考勤数；teacherID 为空时统计全部
func (s *attendanceService) countPending(ctx context.Context, teacherID string) (int64, error) {
	n, err := s.repo.Attendance.Count(ctx, repository.AttendanceFilter{
		PersonType:     model.PersonTeacher,
		PersonID:       teacherID,
		Status:         model.AttendanceStatusPending,
		SelfMarkedOnly: true,
	})
	if err != nil {
		s.logger.Error("统计待审核考勤失败", zap.Error(err))
	}
	return n, err
}

func (s *attendanceService) Report(ctx context.Context, actor Actor, personType string, from, to time.Time) ([]dto.AttendanceReportRow, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if personType == "" {
		personType = model.PersonStudent
	}
	if personType != model.PersonStudent && personType != model.PersonTeacher {
		return nil, ErrInvalidPerson
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return nil, err
	}

	tallies, err := s.repo.Attendance.Tally(ctx, personType, from, to)
	if err != nil {
		s.logger.Error("考勤报表统计失败", zap.Error(err))
		return nil, err
	}
	byPerson := make(map[string]repository.AttendanceTally, len(tallies))
	for _, t := range tallies {
		byPerson[t.PersonID] = t
	}

	var rows []dto.AttendanceReportRow
	add := func(id, code, name string) {
		t := byPerson[id]
		stats := model.NewAttendanceStats(t.Total, t.Present)
		rows = append(rows, dto.AttendanceReportRow{
			PersonID:   id,
			Code:       code,
			Name:       name,
			Total:      stats.Total,
			Present:    stats.Present,
			Absent:     stats.Absent,
			Percentage: stats.Percentage,
		})
	}

	if personType == model.PersonStudent {
		students, _, err := s.repo.Student.List(ctx, repository.StudentFilter{ActiveOnly: true}, 0, 0)
		if err != nil {
			return nil, err
		}
		for i := range students {
			add(students[i].StudentID, students[i].StudentCode, students[i].FullName())
		}
	} else {
		teachers, _, err := s.repo.Teacher.List(ctx, "", 0, 0)
		if err != nil {
			return nil, err
		}
		for i := range teachers {
			if teachers[i].IsActive {
				add(teachers[i].TeacherID, teachers[i].TeacherCode, teachers[i].FullName())
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Percentage != rows[j].Percentage {
			return rows[i].Percentage > rows[j].Percentage
		}
		return rows[i].Code < rows[j].Code
	})
	return rows, nil
}

func (s *attendanceService) ListForPerson(ctx context.Context, actor Actor, person model.Person, days int) ([]model.Attendance, error) {
	if !person.Valid() {
		return nil, ErrInvalidPerson
	}
	if err := canView(actor, person); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = s.cfg.Attendance.StatsWindowDays
	}
	to := s.clock.Today()
	from := to.AddDate(0, 0, -days)

	list, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		PersonType: person.Type, PersonID: person.ID, From: &from, To: &to,
	})
	if err != nil {
		s.logger.Error("查询个人考勤失败", zap.String("person", person.ID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *attendanceService) ExportCalendar(ctx context.Context, actor Actor, person model.Person, from, to time.Time) ([]byte, string, error) {
	if !person.Valid() {
		return nil, "", ErrInvalidPerson
	}
	if err := canView(actor, person); err != nil {
		return nil, "", err
	}
	from, to, err := s.resolveRange(from, to)
	if err != nil {
		return nil, "", err
	}

	list, err := s.repo.Attendance.List(ctx, repository.AttendanceFilter{
		PersonType: person.Type, PersonID: person.ID, From: &from, To: &to,
	})
	if err != nil {
		s.logger.Error("查询个人考勤失败", zap.String("person", person.ID), zap.Error(err))
		return nil, "", err
	}

	body := buildAttendanceCalendar(list, s.clock.Now())
	filename := fmt.Sprintf("attendance_%s_%s_%s.ics", person.Type, from.Format("20060102"), to.Format("20060102"))
	return []byte(body), filename, nil
}

// ── 辅助函数 ──

func (s *attendanceService) newRecord(actor Actor, person model.Person, date time.Time, isPresent bool, notes string, selfMarked bool) *model.Attendance {
	rec := &model.Attendance{
		Date:       date,
		IsPresent:  isPresent,
		Status:     model.InitialAttendanceStatus(selfMarked),
		SelfMarked: selfMarked,
		MarkedBy:   actor.userRef(),
		MarkedAt:   s.clock.Now(),
		Notes:      notes,
		BaseModel:  model.BaseModel{CreatedBy: actor.userRef()},
	}
	person.Assign(rec)
	return rec
}

func (s *attendanceService) ensurePerson(ctx context.Context, p model.Person) error {
	if p.Type == model.PersonTeacher {
		_, err := loadTeacher(ctx, s.repo, s.logger, p.ID)
		return err
	}
	_, err := loadStudent(ctx, s.repo, s.logger, p.ID)
	return err
}

// resolveRange 零值取最近 stats_window_days 天
func (s *attendanceService) resolveRange(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.clock.Today()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -s.cfg.Attendance.StatsWindowDays)
	}
	from, to = clock.DateOf(from), clock.DateOf(to)
	if from.After(to) {
		return from, to, ErrInvalidRange
	}
	return from, to, nil
}

// canView 管理员可查看任何人；教师可查看自己与学生；学生只能查看自己
func canView(actor Actor, p model.Person) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsTeacher():
		if p.Type == model.PersonStudent || (p.Type == model.PersonTeacher && p.ID == actor.ProfileID && p.ID != "") {
			return nil
		}
	case actor.IsStudent():
		if p.Type == model.PersonStudent && p.ID == actor.ProfileID && p.ID != "" {
			return nil
		}
	}
	return ErrAccessDenied
}
