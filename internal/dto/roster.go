package dto

// ── 学生 / 教师 / 课程 / 作业 DTO ──

// CreateStudentRequest 新建学生（同时创建登录账号）
type CreateStudentRequest struct {
	StudentCode     string `json:"student_code"     binding:"required,max=20"`
	FirstName       string `json:"first_name"       binding:"required,max=50"`
	LastName        string `json:"last_name"        binding:"required,max=50"`
	Email           string `json:"email"            binding:"required,email"`
	Phone           string `json:"phone"            binding:"omitempty,max=20"`
	CurrentSemester int    `json:"current_semester" binding:"required,semester"`
	AdmissionDate   string `json:"admission_date"   binding:"required,datetime=2006-01-02"`
	Password        string `json:"password"         binding:"required,min=8,max=64"`
}

// ListStudentsRequest 学生列表查询
type ListStudentsRequest struct {
	PaginationRequest
	Search   string `form:"search"`
	Semester int    `form:"semester" binding:"omitempty,semester"`
}

// UpdateSemesterRequest 调整学生当前学期
type UpdateSemesterRequest struct {
	Semester int `json:"semester" binding:"required,semester"`
}

// SetActiveRequest 启用 / 停用
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateTeacherRequest 新建教师（同时创建登录账号）
type CreateTeacherRequest struct {
	TeacherCode string `json:"teacher_code" binding:"required,max=20"`
	FirstName   string `json:"first_name"   binding:"required,max=50"`
	LastName    string `json:"last_name"    binding:"required,max=50"`
	Email       string `json:"email"        binding:"required,email"`
	Phone       string `json:"phone"        binding:"omitempty,max=20"`
	Department  string `json:"department"   binding:"omitempty,max=100"`
	Designation string `json:"designation"  binding:"omitempty,max=100"`
	BaseSalary  *int64 `json:"base_salary"  binding:"omitempty,min=0"`
	Password    string `json:"password"     binding:"required,min=8,max=64"`
}

// ListTeachersRequest 教师列表查询
type ListTeachersRequest struct {
	PaginationRequest
	Search string `form:"search"`
}

// SetSalaryRequest 设置基本工资，nil 表示清除
type SetSalaryRequest struct {
	BaseSalary *int64 `json:"base_salary" binding:"omitempty,min=0"`
}

// CreateSubjectRequest 新建课程
type CreateSubjectRequest struct {
	Code     string `json:"code"     binding:"required,max=20"`
	Name     string `json:"name"     binding:"required,max=200"`
	Semester int    `json:"semester" binding:"required,semester"`
	Credits  int    `json:"credits"  binding:"omitempty,min=1,max=10"`
}

// ListSubjectsRequest 课程 / 作业列表查询
type ListSubjectsRequest struct {
	Semester int  `form:"semester" binding:"omitempty,semester"`
	Mine     bool `form:"mine"`
}

// AssignTeacherRequest 分配任课教师，空串表示取消分配
type AssignTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"omitempty,uuid"`
}

// CreateAssignmentRequest 布置作业
type CreateAssignmentRequest struct {
	SubjectID   string `json:"subject_id"  binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	DueDate     string `json:"due_date"    binding:"required"` // RFC3339 或 YYYY-MM-DD（当天 23:59:59）
	MaxMarks    int    `json:"max_marks"   binding:"omitempty,min=1,max=1000"`
	Status      string `json:"status"      binding:"omitempty,oneof=active closed draft"`
}
