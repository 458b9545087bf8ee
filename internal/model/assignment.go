package model

import "time"

// 作业状态
const (
	AssignmentStatusActive = "active"
	AssignmentStatusClosed = "closed"
	AssignmentStatusDraft  = "draft"
)

// Assignment 作业，对应 assignments
type Assignment struct {
	AssignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	SubjectID    string    `gorm:"type:uuid;not null;index"                       json:"subject_id"`
	Title        string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string    `gorm:"type:text"                                      json:"description"`
	DueDate      time.Time `gorm:"not null"                                       json:"due_date"`
	MaxMarks     int       `gorm:"not null;default:100"                           json:"max_marks"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	BaseModel

	// 关联
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// IsLateAt 在 t 时刻提交是否迟交
func (a *Assignment) IsLateAt(t time.Time) bool {
	return t.After(a.DueDate)
}
