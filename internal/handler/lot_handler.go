package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// LotHandler 生产批次处理器
type LotHandler struct {
	svc *service.LotService
}

// NewLotHandler 创建生产批次处理器
func NewLotHandler(svc *service.LotService) *LotHandler {
	return &LotHandler{svc: svc}
}

// Create 创建生产批次，同时生成选定行项和四道标准工序
func (h *LotHandler) Create(c *gin.Context) {
	var req service.CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lot, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, lot)
}

// List 批次列表
func (h *LotHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.LotListParams{
		Status:   c.Query("status"),
		BOMID:    c.Query("bom_id"),
		Priority: c.Query("priority"),
		Page:     page,
		PageSize: pageSize,
	}

	lots, total, err := h.svc.List(c.Request.Context(), GetUserID(c), params)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items:      lots,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 批次详情含工序
func (h *LotHandler) Get(c *gin.Context) {
	lot, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, lot)
}

// Update 更新批次（含状态迁移）
func (h *LotHandler) Update(c *gin.Context) {
	var req service.UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lot, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, lot)
}

// UpdateStatusByProgress 按工序完成度推进批次状态
func (h *LotHandler) UpdateStatusByProgress(c *gin.Context) {
	lot, changed, err := h.svc.UpdateStatusByProgress(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"lot": lot, "changed": changed})
}

// Delete 删除批次及其全部下属数据
func (h *LotHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Production lot deleted"})
}

// GetSelectedItems 批次选定的BOM行项
func (h *LotHandler) GetSelectedItems(c *gin.Context) {
	items, err := h.svc.GetSelectedItems(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"items": items})
}
