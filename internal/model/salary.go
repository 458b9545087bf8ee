package model

import "time"

// 工资状态
const (
	SalaryStatusPending = "pending"
	SalaryStatusPaid    = "paid"
)

// SalaryRecord 教师月度工资，对应 teacher_salary_records
// (teacher_id, month, year) 唯一
type SalaryRecord struct {
	SalaryRecordID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"salary_record_id"`
	TeacherID      string     `gorm:"type:uuid;not null;uniqueIndex:uk_salary_teacher_period" json:"teacher_id"`
	Month          int        `gorm:"not null;uniqueIndex:uk_salary_teacher_period"       json:"month"`
	Year           int        `gorm:"not null;uniqueIndex:uk_salary_teacher_period"       json:"year"`
	BaseSalary     int64      `gorm:"not null"                                            json:"base_salary"`
	Bonus          int64      `gorm:"not null;default:0"                                  json:"bonus"`
	Deductions     int64      `gorm:"not null;default:0"                                  json:"deductions"`
	NetSalary      int64      `gorm:"not null"                                            json:"net_salary"`
	PaymentStatus  string     `gorm:"type:varchar(20);not null;default:'pending'"         json:"payment_status"`
	IsPaid         bool       `gorm:"not null;default:false"                              json:"is_paid"`
	PaymentDate    *time.Time `json:"payment_date,omitempty"`
	PaymentMethod  string     `gorm:"type:varchar(50)"                                    json:"payment_method,omitempty"`
	Notes          string     `gorm:"type:text"                                           json:"notes,omitempty"`
	ProcessedBy    *string    `gorm:"type:uuid"                                           json:"processed_by,omitempty"`
	BaseModel

	// 关联
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (SalaryRecord) TableName() string { return "teacher_salary_records" }

// NewSalaryRecord 以基本工资创建待发放记录
func NewSalaryRecord(teacherID string, month, year int, base int64) *SalaryRecord {
	r := &SalaryRecord{
		TeacherID:     teacherID,
		Month:         month,
		Year:          year,
		BaseSalary:    base,
		PaymentStatus: SalaryStatusPending,
	}
	r.Recalculate()
	return r
}

// ComputeNet 实发 = 基本 + 奖金 - 扣款
func ComputeNet(base, bonus, deductions int64) int64 {
	return base + bonus - deductions
}

// Recalculate 每次保存前重算实发与是否已发放
func (r *SalaryRecord) Recalculate() {
	r.NetSalary = ComputeNet(r.BaseSalary, r.Bonus, r.Deductions)
	r.IsPaid = r.PaymentDate != nil && r.PaymentStatus == SalaryStatusPaid
}

// ValidPeriod 月份 1-12，年份 2000-2100
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}
