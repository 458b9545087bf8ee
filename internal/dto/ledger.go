package dto

// ── 学费 / 工资 DTO ──

// ApplyPaymentRequest 登记学费缴纳
type ApplyPaymentRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Semester  int    `json:"semester"   binding:"required,semester"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"     binding:"omitempty,oneof=cash bank online cheque"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
}

// FeeOverviewQuery 学费总览查询
type FeeOverviewQuery struct {
	Search   string `form:"search"`
	Semester int    `form:"semester" binding:"omitempty,semester"`
	Status   string `form:"status"   binding:"omitempty,oneof=pending completed"`
}

// FeeStatusQuery 学费汇总查询
type FeeStatusQuery struct {
	UpTo int `form:"up_to" binding:"omitempty,semester"`
}

// SalaryPeriodQuery 工资期间查询，缺省为当月
type SalaryPeriodQuery struct {
	Month int `form:"month" binding:"omitempty,min=1,max=12"`
	Year  int `form:"year"  binding:"omitempty,min=2000,max=2100"`
}

// GenerateSalaryRequest 批量生成月度工资
type GenerateSalaryRequest struct {
	Month int `json:"month" binding:"required"`
	Year  int `json:"year"  binding:"required"`
}

// MarkSalaryPaidRequest 发放工资
type MarkSalaryPaidRequest struct {
	Bonus      int64  `json:"bonus"`
	Deductions int64  `json:"deductions"`
	Method     string `json:"method" binding:"omitempty,oneof=cash bank cheque"`
	Notes      string `json:"notes"  binding:"omitempty,max=500"`
}

// ── 学费 / 工资响应 ──

// FeeOverviewRow 学费总览行
type FeeOverviewRow struct {
	StudentID       string `json:"student_id"`
	StudentCode     string `json:"student_code"`
	Name            string `json:"name"`
	CurrentSemester int    `json:"current_semester"`
	Semester        int    `json:"semester"`
	TotalFee        int64  `json:"total_fee"`
	PaidAmount      int64  `json:"paid_amount"`
	RemainingAmount int64  `json:"remaining_amount"`
	PaymentStatus   string `json:"payment_status"`
}

// FeeOverviewResponse 学费总览
type FeeOverviewResponse struct {
	Rows             []FeeOverviewRow `json:"rows"`
	TotalExpected    int64            `json:"total_expected"`
	TotalCollected   int64            `json:"total_collected"`
	CollectionRate   float64          `json:"collection_rate"`
	CompletedCount   int              `json:"completed_count"`
	OutstandingCount int              `json:"outstanding_count"`
}

// PaymentHistoryResponse 缴费历史
type PaymentHistoryResponse struct {
	Payments  interface{} `json:"payments"`
	TotalPaid int64       `json:"total_paid"`
}

// SalaryOverviewResponse 月度工资总览
type SalaryOverviewResponse struct {
	Month        int         `json:"month"`
	Year         int         `json:"year"`
	Records      interface{} `json:"records"`
	TotalExpense int64       `json:"total_expense"`
	TotalPaid    int64       `json:"total_paid"`
	PaidCount    int         `json:"paid_count"`
	PendingCount int         `json:"pending_count"`
	PaidRate     float64     `json:"paid_rate"`
}

// SalaryHistoryResponse 教师工资历史
type SalaryHistoryResponse struct {
	Records   interface{} `json:"records"`
	TotalPaid int64       `json:"total_paid"`
}

// GenerateSalaryResponse 批量生成结果
type GenerateSalaryResponse struct {
	Month   int `json:"month"`
	Year    int `json:"year"`
	Created int `json:"created"`
}

// ApplyPaymentResponse 缴费结果：更新后的学期记录与收据
type ApplyPaymentResponse struct {
	Record  interface{} `json:"record"`
	Payment interface{} `json:"payment"`
}

// SalaryRecordQuery 指定教师某月工资
type SalaryRecordQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year"  binding:"required,min=2000,max=2100"`
}
