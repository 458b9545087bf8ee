package model

import "time"

// 提交状态
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusLate      = "late"
	SubmissionStatusApproved  = "approved"
	SubmissionStatusRejected  = "rejected"
	SubmissionStatusGraded    = "graded"
	SubmissionStatusReturned  = "returned"
)

// Submission 作业提交，对应 assignment_submissions
// (assignment_id, student_id) 唯一；被驳回的提交删除后可重新提交一次
type Submission struct {
	SubmissionID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"           json:"submission_id"`
	AssignmentID    string     `gorm:"type:uuid;not null;uniqueIndex:uk_submission_assignment_student" json:"assignment_id"`
	StudentID       string     `gorm:"type:uuid;not null;uniqueIndex:uk_submission_assignment_student" json:"student_id"`
	SubmissionText  string     `gorm:"type:text"                                                json:"submission_text,omitempty"`
	FileRef         string     `gorm:"type:varchar(500)"                                        json:"file_ref,omitempty"`
	SubmissionDate  time.Time  `gorm:"not null"                                                 json:"submission_date"`
	Status          string     `gorm:"type:varchar(20);not null;default:'submitted'"            json:"status"`
	IsLate          bool       `gorm:"not null;default:false"                                   json:"is_late"`
	MarksObtained   *int       `json:"marks_obtained,omitempty"`
	Feedback        string     `gorm:"type:text"                                                json:"feedback,omitempty"`
	TeacherComments string     `gorm:"type:text"                                                json:"teacher_comments,omitempty"`
	RejectionReason string     `gorm:"type:text"                                                json:"rejection_reason,omitempty"`
	ReviewedBy      *string    `gorm:"type:uuid"                                                json:"reviewed_by,omitempty"`
	ReviewedDate    *time.Time `json:"reviewed_date,omitempty"`
	GradedBy        *string    `gorm:"type:uuid"                                                json:"graded_by,omitempty"`
	GradedDate      *time.Time `json:"graded_date,omitempty"`
	BaseModel

	// 关联
	Assignment *Assignment `gorm:"foreignKey:AssignmentID;references:AssignmentID" json:"assignment,omitempty"`
	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID"       json:"student,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "assignment_submissions" }

// InitialSubmissionStatus 按是否迟交给出初始状态
func InitialSubmissionStatus(isLate bool) string {
	if isLate {
		return SubmissionStatusLate
	}
	return SubmissionStatusSubmitted
}

// AwaitingReview 是否处于待评审状态（submitted / late）
func (s *Submission) AwaitingReview() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusLate
}

// Gradable 是否可评分
func (s *Submission) Gradable() bool {
	return s.AwaitingReview() || s.Status == SubmissionStatusApproved
}
