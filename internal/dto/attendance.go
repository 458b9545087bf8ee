package dto

// ── 考勤 DTO ──

// MarkAttendanceRequest 管理员 / 教师标记考勤
type MarkAttendanceRequest struct {
	PersonType string `json:"person_type" binding:"required,oneof=student teacher"`
	PersonID   string `json:"person_id"   binding:"required,uuid"`
	Date       string `json:"date"        binding:"required,datetime=2006-01-02,notfuture"`
	IsPresent  bool   `json:"is_present"`
	Notes      string `json:"notes"       binding:"omitempty,max=500"`
}

// MarkStudentsRequest 班级点名（批量）
type MarkStudentsRequest struct {
	Date    string             `json:"date"    binding:"required,datetime=2006-01-02,notfuture"`
	Entries []StudentMarkEntry `json:"entries" binding:"required,min=1,max=500,dive"`
}

// StudentMarkEntry 单个学生考勤
type StudentMarkEntry struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	IsPresent bool   `json:"is_present"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
}

// SelfMarkRequest 教师自助考勤
type SelfMarkRequest struct {
	Date      string `json:"date"       binding:"omitempty,datetime=2006-01-02,notfuture"` // 为空时取今天
	IsPresent bool   `json:"is_present"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
}

// ReviewAttendanceRequest 审批自助考勤
type ReviewAttendanceRequest struct {
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=500"`
}

// AttendanceReviewQuery 审核列表查询
type AttendanceReviewQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected all"`
	Date   string `form:"date"   binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceStatsQuery 出勤统计查询
type AttendanceStatsQuery struct {
	PersonType string `form:"person_type" binding:"omitempty,oneof=student teacher"`
	PersonID   string `form:"person_id"   binding:"omitempty,uuid"`
	Days       int    `form:"days"        binding:"omitempty,min=1,max=365"`
}

// DateQuery 单日查询
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceRangeQuery 区间查询（报表 / 日历导出）
type AttendanceRangeQuery struct {
	PersonType string `form:"person_type" binding:"omitempty,oneof=student teacher"`
	PersonID   string `form:"person_id"   binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
}

// ── 考勤响应 ──

// MarkStudentsResponse 批量点名结果
type MarkStudentsResponse struct {
	Present int      `json:"present"`
	Absent  int      `json:"absent"`
	Skipped []string `json:"skipped"`
}

// AttendanceReviewResponse 审核列表
type AttendanceReviewResponse struct {
	Records      interface{} `json:"records"`
	PendingCount int64       `json:"pending_count"`
	From         string      `json:"from"`
	To           string      `json:"to"`
}

// DailyPersonSummary 单类人员当日汇总
type DailyPersonSummary struct {
	Total     int64 `json:"total"`
	Present   int64 `json:"present"`
	Absent    int64 `json:"absent"`
	NotMarked int64 `json:"not_marked"`
}

// DailySummaryResponse 当日考勤汇总
type DailySummaryResponse struct {
	Date            string             `json:"date"`
	Students        DailyPersonSummary `json:"students"`
	Teachers        DailyPersonSummary `json:"teachers"`
	PendingApproval int64              `json:"pending_approval"`
}

// AttendanceReportRow 报表行
type AttendanceReportRow struct {
	PersonID   string  `json:"person_id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Total      int64   `json:"total"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Percentage float64 `json:"percentage"`
}
