package dto

// ── 仪表盘响应 ──

// AdminDashboard 管理员仪表盘
type AdminDashboard struct {
	TotalStudents    int64                `json:"total_students"`
	ActiveStudents   int64                `json:"active_students"`
	TotalTeachers    int64                `json:"total_teachers"`
	TotalSubjects    int64                `json:"total_subjects"`
	Today            DailySummaryResponse `json:"today"`
	PendingApprovals int64                `json:"pending_approvals"`
	Salary           SalaryMonthSummary   `json:"salary"`
}

// SalaryMonthSummary 当月工资摘要（仅统计已存在的记录）
type SalaryMonthSummary struct {
	Month        int   `json:"month"`
	Year         int   `json:"year"`
	TotalExpense int64 `json:"total_expense"`
	TotalPaid    int64 `json:"total_paid"`
	PendingCount int   `json:"pending_count"`
}

// TeacherDashboard 教师仪表盘
type TeacherDashboard struct {
	Attendance       interface{} `json:"attendance"`
	PendingSelfMarks int64       `json:"pending_self_marks"`
	Subjects         interface{} `json:"subjects"`
	AwaitingReview   int64       `json:"awaiting_review"`
	TodayMarked      bool        `json:"today_marked"`
	TodayStatus      string      `json:"today_status,omitempty"`
}

// StudentDashboard 学生仪表盘
type StudentDashboard struct {
	CurrentSemester int              `json:"current_semester"`
	Attendance      interface{}      `json:"attendance"`
	Fees            interface{}      `json:"fees"`
	Subjects        interface{}      `json:"subjects"`
	Submissions     map[string]int64 `json:"submissions"`
}
