package model

import "time"

// 学费状态
const (
	FeeStatusPending = "pending"
	FeeStatusPartial = "partial"
	FeeStatusPaid    = "paid"
)

// 学费汇总状态（仅展示，不落库）
const (
	FeeAggregateFullPaid      = "Full Paid"
	FeeAggregateHalfPaid      = "Half Paid"
	FeeAggregatePartiallyPaid = "Partially Paid"
	FeeAggregateNotPaid       = "Not Paid"
)

// FeeRecord 学期学费记录，对应 student_fee_records
// (student_id, semester) 唯一；只通过追加缴费更新，从不删除
type FeeRecord struct {
	FeeRecordID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"fee_record_id"`
	StudentID       string     `gorm:"type:uuid;not null;uniqueIndex:uk_fee_student_semester" json:"student_id"`
	Semester        int        `gorm:"not null;uniqueIndex:uk_fee_student_semester"    json:"semester"`
	TotalFee        int64      `gorm:"not null"                                        json:"total_fee"`
	PaidAmount      int64      `gorm:"not null;default:0"                              json:"paid_amount"`
	RemainingAmount int64      `gorm:"not null"                                        json:"remaining_amount"`
	PaymentStatus   string     `gorm:"type:varchar(20);not null;default:'pending'"     json:"payment_status"`
	IsCompleted     bool       `gorm:"not null;default:false"                          json:"is_completed"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	PaymentMethod   string     `gorm:"type:varchar(50)"                                json:"payment_method,omitempty"`
	Notes           string     `gorm:"type:text"                                       json:"notes,omitempty"`
	RecordedBy      *string    `gorm:"type:uuid"                                       json:"recorded_by,omitempty"`
	VersionedModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (FeeRecord) TableName() string { return "student_fee_records" }

// NewFeeRecord 创建零缴费的学期记录
func NewFeeRecord(studentID string, semester int, totalFee int64) *FeeRecord {
	r := &FeeRecord{StudentID: studentID, Semester: semester, TotalFee: totalFee}
	r.Recalculate()
	return r
}

// Balance 当前剩余应缴
func (r *FeeRecord) Balance() int64 {
	if b := r.TotalFee - r.PaidAmount; b > 0 {
		return b
	}
	return 0
}

// Recalculate 由已缴金额推导剩余、状态与是否结清
func (r *FeeRecord) Recalculate() {
	switch {
	case r.PaidAmount >= r.TotalFee:
		r.PaidAmount = r.TotalFee
		r.PaymentStatus = FeeStatusPaid
		r.IsCompleted = true
	case r.PaidAmount <= 0:
		r.PaymentStatus = FeeStatusPending
		r.IsCompleted = false
	default:
		r.PaymentStatus = FeeStatusPartial
		r.IsCompleted = false
	}
	r.RemainingAmount = r.Balance()
}

// FeePayment 缴费流水，对应 fee_payments，只追加
type FeePayment struct {
	PaymentID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	FeeRecordID   string    `gorm:"type:uuid;not null;index"                       json:"fee_record_id"`
	StudentID     string    `gorm:"type:uuid;not null;index"                       json:"student_id"`
	Semester      int       `gorm:"not null"                                       json:"semester"`
	Amount        int64     `gorm:"not null"                                       json:"amount"`
	PaymentMethod string    `gorm:"type:varchar(50)"                               json:"payment_method,omitempty"`
	ReceiptNumber string    `gorm:"type:varchar(40);not null;uniqueIndex"          json:"receipt_number"`
	Notes         string    `gorm:"type:text"                                      json:"notes,omitempty"`
	RecordedBy    *string   `gorm:"type:uuid"                                      json:"recorded_by,omitempty"`
	PaidAt        time.Time `gorm:"not null"                                       json:"paid_at"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (FeePayment) TableName() string { return "fee_payments" }

// SemesterFee 单学期汇总
type SemesterFee struct {
	Semester   int    `json:"semester"`
	TotalFee   int64  `json:"total_fee"`
	PaidAmount int64  `json:"paid_amount"`
	Status     string `json:"status"`
}

// FeeAggregate 学费汇总
type FeeAggregate struct {
	Status        string        `json:"status"`
	TotalExpected int64         `json:"total_expected"`
	TotalPaid     int64         `json:"total_paid"`
	Breakdown     []SemesterFee `json:"breakdown"`
}

// AggregateFees 汇总多个学期记录
// 全部结清为 Full Paid；累计缴费达到应缴一半为 Half Paid；有任何缴费为 Partially Paid
func AggregateFees(records []FeeRecord) FeeAggregate {
	agg := FeeAggregate{Breakdown: make([]SemesterFee, 0, len(records))}
	allPaid := len(records) > 0
	for _, r := range records {
		agg.TotalExpected += r.TotalFee
		agg.TotalPaid += r.PaidAmount
		if r.PaidAmount < r.TotalFee {
			allPaid = false
		}
		agg.Breakdown = append(agg.Breakdown, SemesterFee{
			Semester:   r.Semester,
			TotalFee:   r.TotalFee,
			PaidAmount: r.PaidAmount,
			Status:     r.PaymentStatus,
		})
	}

	switch {
	case allPaid:
		agg.Status = FeeAggregateFullPaid
	case agg.TotalExpected > 0 && agg.TotalPaid*2 >= agg.TotalExpected:
		agg.Status = FeeAggregateHalfPaid
	case agg.TotalPaid > 0:
		agg.Status = FeeAggregatePartiallyPaid
	default:
		agg.Status = FeeAggregateNotPaid
	}
	return agg
}
