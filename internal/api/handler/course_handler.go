package handler

import (
	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// CourseHandler 课程与作业 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// CreateSubject 新建课程
// POST /api/v1/subjects
func (h *CourseHandler) CreateSubject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	subject, err := h.courseSvc.CreateSubject(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, subject)
}

// ListSubjects 课程列表
// GET /api/v1/subjects?semester=&mine=
func (h *CourseHandler) ListSubjects(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ListSubjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.courseSvc.ListSubjects(c.Request.Context(), actor, req.Semester, req.Mine)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// AssignTeacher 分配任课教师
// PUT /api/v1/subjects/:id/teacher
func (h *CourseHandler) AssignTeacher(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.AssignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	subject, err := h.courseSvc.AssignTeacher(c.Request.Context(), actor, c.Param("id"), req.TeacherID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, subject)
}

// CreateAssignment 布置作业
// POST /api/v1/assignments
func (h *CourseHandler) CreateAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	a, err := h.courseSvc.CreateAssignment(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, a)
}

// ListAssignments 作业列表
// GET /api/v1/assignments?semester=
func (h *CourseHandler) ListAssignments(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ListSubjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.courseSvc.ListAssignments(c.Request.Context(), actor, req.Semester)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// GetAssignment 作业详情
// GET /api/v1/assignments/:id
func (h *CourseHandler) GetAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	a, err := h.courseSvc.GetAssignment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, a)
}
