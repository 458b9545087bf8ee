package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// FeeHandler 学费账本 HTTP 处理器
type FeeHandler struct {
	feeSvc    service.FeeService
	exportSvc service.ExportService
}

// NewFeeHandler 创建 FeeHandler
func NewFeeHandler(feeSvc service.FeeService, exportSvc service.ExportService) *FeeHandler {
	return &FeeHandler{feeSvc: feeSvc, exportSvc: exportSvc}
}

// ApplyPayment 登记缴费
// POST /api/v1/fees/payments
func (h *FeeHandler) ApplyPayment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec, payment, err := h.feeSvc.ApplyPayment(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.ApplyPaymentResponse{Record: rec, Payment: payment})
}

// GetRecord 某学生某学期的学费记录（不存在时按默认学费创建）
// GET /api/v1/fees/students/:id/semesters/:semester
func (h *FeeHandler) GetRecord(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	semester, err := strconv.Atoi(c.Param("semester"))
	if err != nil {
		response.BadRequest(c, codeValidation, "semester 必须为整数")
		return
	}

	rec, err := h.feeSvc.GetOrCreate(c.Request.Context(), actor, c.Param("id"), semester)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// Status 学费汇总状态
// GET /api/v1/fees/students/:id/status?up_to=
func (h *FeeHandler) Status(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.FeeStatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	agg, err := h.feeSvc.AggregateStatus(c.Request.Context(), actor, c.Param("id"), q.UpTo)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, agg)
}

// History 缴费历史
// GET /api/v1/fees/students/:id/history
func (h *FeeHandler) History(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	history, err := h.feeSvc.PaymentHistory(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, history)
}

// Overview 学费总览
// GET /api/v1/fees/overview
func (h *FeeHandler) Overview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.FeeOverviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	overview, err := h.feeSvc.Overview(c.Request.Context(), actor, &q)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, overview)
}

// ExportOverview 导出学费总览
// GET /api/v1/fees/overview/export
func (h *FeeHandler) ExportOverview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.FeeOverviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportFeeOverview(c.Request.Context(), actor, &q)
	if err != nil {
		handleError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}
