package model

// Teacher 教师档案，对应 teachers
// BaseSalary 为空表示未配置工资，生成工资记录时跳过
type Teacher struct {
	TeacherID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	TeacherCode string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"teacher_code"`
	FirstName   string `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName    string `gorm:"type:varchar(50);not null"                      json:"last_name"`
	Email       string `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone       string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	Department  string `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	Designation string `gorm:"type:varchar(100)"                              json:"designation,omitempty"`
	BaseSalary  *int64 `json:"base_salary,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// FullName 姓名
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// HasSalary 是否已配置基本工资
func (t *Teacher) HasSalary() bool {
	return t.BaseSalary != nil && *t.BaseSalary > 0
}
