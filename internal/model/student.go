package model

import "time"

// Student 学生档案，对应 students
type Student struct {
	StudentID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	StudentCode     string    `gorm:"type:varchar(20);not null;uniqueIndex"          json:"student_code"`
	FirstName       string    `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName        string    `gorm:"type:varchar(50);not null"                      json:"last_name"`
	Email           string    `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone           string    `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Program         string    `gorm:"type:varchar(20);not null;default:'BCA'"        json:"program"`
	CurrentSemester int       `gorm:"not null;default:1"                             json:"current_semester"`
	AdmissionDate   time.Time `gorm:"type:date;not null"                             json:"admission_date"`
	IsActive        bool      `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// FullName 姓名
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
