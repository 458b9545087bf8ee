package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/model"
	"bca-portal/internal/service"
	"bca-portal/pkg/clock"
	"bca-portal/pkg/response"
)

// AttendanceHandler 考勤 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
	exportSvc     service.ExportService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService, exportSvc service.ExportService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, exportSvc: exportSvc}
}

// Mark 管理员 / 教师标记考勤
// POST /api/v1/attendance/mark
func (h *AttendanceHandler) Mark(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	person := model.Person{Type: req.PersonType, ID: req.PersonID}
	rec, err := h.attendanceSvc.Mark(c.Request.Context(), actor, person, date, req.IsPresent, req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// MarkStudents 批量点名
// POST /api/v1/attendance/mark/students
func (h *AttendanceHandler) MarkStudents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MarkStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.attendanceSvc.MarkStudents(c.Request.Context(), actor, date, req.Entries)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// SelfMark 教师自助考勤
// POST /api/v1/attendance/self
func (h *AttendanceHandler) SelfMark(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SelfMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	rec, err := h.attendanceSvc.SelfMark(c.Request.Context(), actor, date, req.IsPresent, req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// ListForReview 自助考勤审核列表
// GET /api/v1/attendance/review?status=&date=
func (h *AttendanceHandler) ListForReview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.AttendanceReviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	var date *time.Time
	if q.Date != "" {
		d, err := parseDate(q.Date)
		if err != nil {
			handleError(c, err)
			return
		}
		date = &d
	}

	result, err := h.attendanceSvc.ListForReview(c.Request.Context(), actor, q.Status, date)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Approve 通过自助考勤
// POST /api/v1/attendance/:id/approve
func (h *AttendanceHandler) Approve(c *gin.Context) {
	h.review(c, h.attendanceSvc.Approve)
}

// Reject 驳回自助考勤
// POST /api/v1/attendance/:id/reject
func (h *AttendanceHandler) Reject(c *gin.Context) {
	h.review(c, h.attendanceSvc.Reject)
}

type reviewFunc func(ctx context.Context, actor service.Actor, id, adminNotes string) (*model.Attendance, error)

func (h *AttendanceHandler) review(c *gin.Context, fn reviewFunc) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ReviewAttendanceRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	rec, err := fn(c.Request.Context(), actor, c.Param("id"), req.AdminNotes)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// Stats 出勤统计；未指定 person_id 时统计本人
// GET /api/v1/attendance/stats
func (h *AttendanceHandler) Stats(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.AttendanceStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	person, err := resolvePerson(actor, q.PersonType, q.PersonID)
	if err != nil {
		handleError(c, err)
		return
	}

	stats, err := h.attendanceSvc.Stats(c.Request.Context(), actor, person, q.Days)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, stats)
}

// Mine 本人最近的考勤记录
// GET /api/v1/attendance/mine?days=
func (h *AttendanceHandler) Mine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.AttendanceStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	person, err := resolvePerson(actor, "", "")
	if err != nil {
		handleError(c, err)
		return
	}

	list, err := h.attendanceSvc.ListForPerson(c.Request.Context(), actor, person, q.Days)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// DailySummary 当日考勤汇总
// GET /api/v1/attendance/summary?date=
func (h *AttendanceHandler) DailySummary(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	date, err := parseOptionalDate(q.Date)
	if err != nil {
		handleError(c, err)
		return
	}

	summary, err := h.attendanceSvc.DailySummary(c.Request.Context(), actor, date)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, summary)
}

// Report 区间出勤报表
// GET /api/v1/attendance/report?person_type=&from=&to=
func (h *AttendanceHandler) Report(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	q, from, to, ok := bindRange(c)
	if !ok {
		return
	}

	rows, err := h.attendanceSvc.Report(c.Request.Context(), actor, q.PersonType, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rows)
}

// ExportReport 导出出勤报表
// GET /api/v1/attendance/report/export
func (h *AttendanceHandler) ExportReport(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	q, from, to, ok := bindRange(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendanceReport(c.Request.Context(), actor, q.PersonType, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// Calendar 导出个人考勤日历（.ics）
// GET /api/v1/attendance/calendar?person_type=&person_id=&from=&to=
func (h *AttendanceHandler) Calendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	q, from, to, ok := bindRange(c)
	if !ok {
		return
	}
	person, err := resolvePerson(actor, q.PersonType, q.PersonID)
	if err != nil {
		handleError(c, err)
		return
	}

	data, filename, err := h.attendanceSvc.ExportCalendar(c.Request.Context(), actor, person, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	sendFile(c, mimeCalendar, filename, data)
}

// ── 辅助函数 ──

func bindRange(c *gin.Context) (dto.AttendanceRangeQuery, time.Time, time.Time, bool) {
	var q dto.AttendanceRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return q, time.Time{}, time.Time{}, false
	}
	from, err := parseOptionalDate(q.From)
	if err != nil {
		handleError(c, err)
		return q, time.Time{}, time.Time{}, false
	}
	to, err := parseOptionalDate(q.To)
	if err != nil {
		handleError(c, err)
		return q, time.Time{}, time.Time{}, false
	}
	return q, from, to, true
}

// resolvePerson 未指定 person_id 时取操作者本人档案；管理员必须显式指定
func resolvePerson(actor service.Actor, personType, personID string) (model.Person, error) {
	if personID != "" {
		if personType == "" {
			personType = model.PersonStudent
		}
		return model.Person{Type: personType, ID: personID}, nil
	}
	switch {
	case actor.IsTeacher() && actor.ProfileID != "":
		return model.TeacherPerson(actor.ProfileID), nil
	case actor.IsStudent() && actor.ProfileID != "":
		return model.StudentPerson(actor.ProfileID), nil
	case actor.IsAdmin():
		return model.Person{}, service.ErrInvalidPerson
	}
	return model.Person{}, service.ErrNoProfile
}

func parseDate(s string) (time.Time, error) {
	d, err := clock.ParseDate(s)
	if err != nil {
		return time.Time{}, service.ErrInvalidDate
	}
	return d, nil
}

// parseOptionalDate 空串返回零值，由 service 取默认日期
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}
