package handler

import (
	"github.com/gin-gonic/gin"

	"bca-portal/internal/dto"
	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// SalaryHandler 工资账本 HTTP 处理器
type SalaryHandler struct {
	salarySvc service.SalaryService
	exportSvc service.ExportService
}

// NewSalaryHandler 创建 SalaryHandler
func NewSalaryHandler(salarySvc service.SalaryService, exportSvc service.ExportService) *SalaryHandler {
	return &SalaryHandler{salarySvc: salarySvc, exportSvc: exportSvc}
}

// MonthlyOverview 月度工资总览
// GET /api/v1/salaries?month=&year=
func (h *SalaryHandler) MonthlyOverview(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.SalaryPeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	overview, err := h.salarySvc.MonthlyOverview(c.Request.Context(), actor, q.Month, q.Year)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, overview)
}

// ExportMonth 导出月度工资表
// GET /api/v1/salaries/export?month=&year=
func (h *SalaryHandler) ExportMonth(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.SalaryPeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportSalaryMonth(c.Request.Context(), actor, q.Month, q.Year)
	if err != nil {
		handleError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// Generate 批量生成月度工资记录
// POST /api/v1/salaries/generate
func (h *SalaryHandler) Generate(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.GenerateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	created, err := h.salarySvc.GenerateMonthly(c.Request.Context(), actor, req.Month, req.Year)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, dto.GenerateSalaryResponse{Month: req.Month, Year: req.Year, Created: created})
}

// MarkPaid 发放工资
// POST /api/v1/salaries/:id/pay
func (h *SalaryHandler) MarkPaid(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MarkSalaryPaidRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err)
		return
	}

	rec, err := h.salarySvc.MarkPaid(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// GetRecord 教师某月工资记录（不存在时创建）
// GET /api/v1/salaries/teachers/:id/record?month=&year=
func (h *SalaryHandler) GetRecord(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var q dto.SalaryRecordQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	rec, err := h.salarySvc.GetOrCreate(c.Request.Context(), actor, c.Param("id"), q.Month, q.Year)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, rec)
}

// History 教师已发放工资历史
// GET /api/v1/salaries/teachers/:id/history
func (h *SalaryHandler) History(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	history, err := h.salarySvc.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, history)
}
