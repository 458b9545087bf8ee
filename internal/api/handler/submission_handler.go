package handler

import (
	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// SubmissionHandler 作业提交 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Submit 学生提交作业
// POST /api/v1/assignments/:id/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Submit(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, sub)
}

// ListForAssignment 某作业的全部提交
// GET /api/v1/assignments/:id/submissions
func (h *SubmissionHandler) ListForAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	list, err := h.submissionSvc.ListForAssignment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// GetMine 学生查看自己对某作业的提交
// GET /api/v1/assignments/:id/submissions/mine
func (h *SubmissionHandler) GetMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	sub, err := h.submissionSvc.GetMine(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}

// Get 提交详情
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	sub, err := h.submissionSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}

// Approve 通过提交
// POST /api/v1/submissions/:id/approve
func (h *SubmissionHandler) Approve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ApproveSubmissionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Approve(c.Request.Context(), actor, c.Param("id"), req.Comments)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}

// Reject 驳回提交
// POST /api/v1/submissions/:id/reject
func (h *SubmissionHandler) Reject(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RejectSubmissionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason, req.Feedback)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}

// Grade 评分
// POST /api/v1/submissions/:id/grade
func (h *SubmissionHandler) Grade(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	sub, err := h.submissionSvc.Grade(c.Request.Context(), actor, c.Param("id"), *req.Marks, req.Feedback)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}

// Return 退回已评分的提交
// POST /api/v1/submissions/:id/return
func (h *SubmissionHandler) Return(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	sub, err := h.submissionSvc.Return(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, sub)
}
