package handler

import (
	"github.com/gin-gonic/gin"

	"bca-portal/internal/service"
	"bca-portal/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Admin GET /api/v1/dashboard/admin
func (h *DashboardHandler) Admin(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	d, err := h.dashboardSvc.Admin(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, d)
}

// Teacher GET /api/v1/dashboard/teacher
func (h *DashboardHandler) Teacher(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	d, err := h.dashboardSvc.Teacher(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, d)
}

// Student GET /api/v1/dashboard/student
func (h *DashboardHandler) Student(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	d, err := h.dashboardSvc.Student(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, d)
}
