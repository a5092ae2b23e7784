package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 看板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// GetIntegrated 单批次全景看板
func (h *DashboardHandler) GetIntegrated(c *gin.Context) {
	dashboard, err := h.svc.GetIntegratedDashboard(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, dashboard)
}

// GetMonitoring 全局生产监控（30秒缓存）
func (h *DashboardHandler) GetMonitoring(c *gin.Context) {
	data, err := h.svc.GetProductionMonitoring(c.Request.Context(), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, data)
}
