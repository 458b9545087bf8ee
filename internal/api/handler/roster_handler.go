package handler

import (
	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// RosterHandler 学生 / 教师档案 HTTP 处理器
type RosterHandler struct {
	rosterSvc service.RosterService
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(rosterSvc service.RosterService) *RosterHandler {
	return &RosterHandler{rosterSvc: rosterSvc}
}

// CreateStudent 新建学生及其登录账号
// POST /api/v1/students
func (h *RosterHandler) CreateStudent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := h.rosterSvc.CreateStudent(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, student)
}

// GetStudent 学生详情
// GET /api/v1/students/:id
func (h *RosterHandler) GetStudent(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	student, err := h.rosterSvc.GetStudent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, student)
}

// ListStudents 学生列表
// GET /api/v1/students
func (h *RosterHandler) ListStudents(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ListStudentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.rosterSvc.ListStudents(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// UpdateStudentSemester 调整学生当前学期
// PUT /api/v1/students/:id/semester
func (h *RosterHandler) UpdateStudentSemester(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.UpdateSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	student, err := h.rosterSvc.UpdateStudentSemester(c.Request.Context(), actor, c.Param("id"), req.Semester)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, student)
}

// SetStudentActive 启用 / 停用学生
// PUT /api/v1/students/:id/active
func (h *RosterHandler) SetStudentActive(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.rosterSvc.SetStudentActive(c.Request.Context(), actor, c.Param("id"), *req.IsActive); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// CreateTeacher 新建教师及其登录账号
// POST /api/v1/teachers
func (h *RosterHandler) CreateTeacher(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	teacher, err := h.rosterSvc.CreateTeacher(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, teacher)
}

// ListTeachers 教师列表
// GET /api/v1/teachers
func (h *RosterHandler) ListTeachers(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ListTeachersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.rosterSvc.ListTeachers(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// SetTeacherSalary 设置基本工资
// PUT /api/v1/teachers/:id/salary
func (h *RosterHandler) SetTeacherSalary(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SetSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	teacher, err := h.rosterSvc.SetTeacherSalary(c.Request.Context(), actor, c.Param("id"), req.BaseSalary)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, teacher)
}

// SetTeacherActive 启用 / 停用教师
// PUT /api/v1/teachers/:id/active
func (h *RosterHandler) SetTeacherActive(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.rosterSvc.SetTeacherActive(c.Request.Context(), actor, c.Param("id"), *req.IsActive); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}
