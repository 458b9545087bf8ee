package model

// Subject 课程，对应 subjects
type Subject struct {
	SubjectID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Code              string  `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Name              string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Semester          int     `gorm:"not null"                                       json:"semester"`
	Credits           int     `gorm:"not null;default:3"                             json:"credits"`
	AssignedTeacherID *string `gorm:"type:uuid"                                      json:"assigned_teacher_id,omitempty"`
	BaseModel

	// 关联
	AssignedTeacher *Teacher `gorm:"foreignKey:AssignedTeacherID;references:TeacherID" json:"assigned_teacher,omitempty"`
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// OwnedBy 课程是否由该教师负责
func (s *Subject) OwnedBy(teacherID string) bool {
	return teacherID != "" && s.AssignedTeacherID != nil && *s.AssignedTeacherID == teacherID
}
