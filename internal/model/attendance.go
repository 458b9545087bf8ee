package model

import (
	"math"
	"time"
)

// 考勤状态
const (
	AttendanceStatusPending      = "pending"
	AttendanceStatusApproved     = "approved"
	AttendanceStatusRejected     = "rejected"
	AttendanceStatusAutoApproved = "auto_approved"
)

// 考勤对象类型
const (
	PersonStudent = "student"
	PersonTeacher = "teacher"
)

// Attendance 每日考勤，对应 daily_attendance
// StudentID 与 TeacherID 有且仅有一个非空；每人每天至多一条
type Attendance struct {
	AttendanceID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    *string    `gorm:"type:uuid"                                      json:"student_id,omitempty"`
	TeacherID    *string    `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	Date         time.Time  `gorm:"type:date;not null;index"                       json:"date"`
	IsPresent    bool       `gorm:"not null;default:false"                         json:"is_present"`
	Status       string     `gorm:"type:varchar(20);not null;default:'auto_approved'" json:"status"`
	SelfMarked   bool       `gorm:"not null;default:false"                         json:"self_marked"`
	MarkedBy     *string    `gorm:"type:uuid"                                      json:"marked_by,omitempty"`
	MarkedAt     time.Time  `gorm:"not null"                                       json:"marked_at"`
	ApprovedBy   *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	Notes        string     `gorm:"type:text"                                      json:"notes,omitempty"`
	AdminNotes   string     `gorm:"type:text"                                      json:"admin_notes,omitempty"`
	BaseModel

	// 关联
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Teacher *Teacher `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "daily_attendance" }

// Person 考勤对象
type Person struct {
	Type string `json:"type"` // student | teacher
	ID   string `json:"id"`
}

// StudentPerson 构造学生考勤对象
func StudentPerson(id string) Person { return Person{Type: PersonStudent, ID: id} }

// TeacherPerson 构造教师考勤对象
func TeacherPerson(id string) Person { return Person{Type: PersonTeacher, ID: id} }

// Valid 类型与 ID 均合法
func (p Person) Valid() bool {
	return p.ID != "" && (p.Type == PersonStudent || p.Type == PersonTeacher)
}

// Assign 将对象写入考勤记录，保证两个外键互斥
func (p Person) Assign(a *Attendance) {
	id := p.ID
	switch p.Type {
	case PersonStudent:
		a.StudentID, a.TeacherID = &id, nil
	case PersonTeacher:
		a.StudentID, a.TeacherID = nil, &id
	}
}

// PersonOf 取考勤记录所属对象
func (a *Attendance) PersonOf() Person {
	if a.TeacherID != nil {
		return TeacherPerson(*a.TeacherID)
	}
	return StudentPerson(DerefStr(a.StudentID))
}

// InitialAttendanceStatus 自助标记进入待审核，其余直接生效
func InitialAttendanceStatus(selfMarked bool) string {
	if selfMarked {
		return AttendanceStatusPending
	}
	return AttendanceStatusAutoApproved
}

// Reviewable 仅教师自助标记且待审核的记录可审批
func (a *Attendance) Reviewable() bool {
	return a.SelfMarked && a.TeacherID != nil && a.Status == AttendanceStatusPending
}

// SelfMarkEditable 自助标记可原地覆盖的状态
func (a *Attendance) SelfMarkEditable() bool {
	return a.Status == AttendanceStatusPending || a.Status == AttendanceStatusRejected
}

// AttendanceStats 出勤统计
type AttendanceStats struct {
	Total      int64   `json:"total"`
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Percentage float64 `json:"percentage"`
}

// NewAttendanceStats 由总数与出勤数计算统计，百分比保留一位小数
func NewAttendanceStats(total, present int64) AttendanceStats {
	return AttendanceStats{
		Total:      total,
		Present:    present,
		Absent:     total - present,
		Percentage: Percent(present, total),
	}
}

// Percent part/whole 的百分比，保留一位小数；whole 为 0 时返回 0
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(whole)) / 10
}
