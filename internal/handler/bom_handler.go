package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// BOMHandler BOM处理器
type BOMHandler struct {
	svc *service.BOMService
}

// NewBOMHandler 创建BOM处理器
func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Create 创建BOM
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	bom, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, bom)
}

// List BOM列表
func (h *BOMHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	boms, total, err := h.svc.List(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items:      boms,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get BOM详情含行项
func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, bom)
}

// Delete 删除BOM及全部行项
func (h *BOMHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "BOM deleted"})
}

// AddItem 添加BOM行项
func (h *BOMHandler) AddItem(c *gin.Context) {
	var req service.CreateBOMItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, item)
}

// GetTree BOM树形结构
func (h *BOMHandler) GetTree(c *gin.Context) {
	tree, err := h.svc.GetTree(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"tree": tree})
}

// GetTotalCost BOM总成本
func (h *BOMHandler) GetTotalCost(c *gin.Context) {
	cost, err := h.svc.TotalCost(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"total_cost": cost})
}
