package handler

import "bca-portal/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Roster     *RosterHandler
	Course     *CourseHandler
	Submission *SubmissionHandler
	Attendance *AttendanceHandler
	Fee        *FeeHandler
	Salary     *SalaryHandler
	Dashboard  *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Roster:     NewRosterHandler(svc.Roster),
		Course:     NewCourseHandler(svc.Course),
		Submission: NewSubmissionHandler(svc.Submission),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.Export),
		Fee:        NewFeeHandler(svc.Fee, svc.Export),
		Salary:     NewSalaryHandler(svc.Salary, svc.Export),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}
