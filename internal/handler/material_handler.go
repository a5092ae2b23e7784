package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// MaterialHandler 批次物料跟踪与告警处理器
type MaterialHandler struct {
	svc *service.MaterialService
}

// NewMaterialHandler 创建物料处理器
func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// Initialize 按BOM行项初始化批次物料行
func (h *MaterialHandler) Initialize(c *gin.Context) {
	materials, err := h.svc.InitializeLotMaterials(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, gin.H{"materials": materials})
}

// ListByLot 批次物料列表
func (h *MaterialHandler) ListByLot(c *gin.Context) {
	materials, err := h.svc.ListByLot(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"materials": materials})
}

// Update 更新物料行数量/状态
func (h *MaterialHandler) Update(c *gin.Context) {
	var req service.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	m, err := h.svc.UpdateMaterial(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, m)
}

// ListAlerts 批次告警（持久化 + 实时合成的短缺告警）
func (h *MaterialHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.svc.ListAlerts(c.Request.Context(), c.Param("id"), c.Query("status"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"alerts": alerts})
}

// CreateAlert 手工创建告警
func (h *MaterialHandler) CreateAlert(c *gin.Context) {
	var req service.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	alert, err := h.svc.CreateAlert(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, alert)
}

// ResolveAlert 关闭告警
func (h *MaterialHandler) ResolveAlert(c *gin.Context) {
	alert, err := h.svc.ResolveAlert(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, alert)
}
