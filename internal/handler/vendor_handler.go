package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// VendorHandler 供应商与批次分配处理器
type VendorHandler struct {
	svc *service.VendorService
}

// NewVendorHandler 创建供应商处理器
func NewVendorHandler(svc *service.VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// CreateVendor 创建供应商
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	vendor, err := h.svc.CreateVendor(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, vendor)
}

// ListVendors 供应商列表
func (h *VendorHandler) ListVendors(c *gin.Context) {
	page, pageSize := GetPagination(c)

	vendors, total, err := h.svc.ListVendors(c.Request.Context(), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items:      vendors,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// CreateAssignment 给批次行项分配供应商
func (h *VendorHandler) CreateAssignment(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	assignment, err := h.svc.CreateAssignment(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, assignment)
}

// BulkCreateAssignments 批量分配供应商，已存在的组合跳过
func (h *VendorHandler) BulkCreateAssignments(c *gin.Context) {
	var req struct {
		Assignments []service.CreateAssignmentRequest `json:"assignments" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	assignments, err := h.svc.BulkCreateAssignments(c.Request.Context(), c.Param("id"), req.Assignments, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, gin.H{"assignments": assignments})
}

// ListAssignments 批次的供应商分配列表
func (h *VendorHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.svc.ListAssignments(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"assignments": assignments})
}

// GetAssignment 分配详情
func (h *VendorHandler) GetAssignment(c *gin.Context) {
	assignment, err := h.svc.GetAssignment(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, assignment)
}

// UpdateAssignment 更新分配（交付/质量状态、数量、单价）
func (h *VendorHandler) UpdateAssignment(c *gin.Context) {
	var req service.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	assignment, err := h.svc.UpdateAssignment(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, assignment)
}

// DeleteAssignment 删除分配
func (h *VendorHandler) DeleteAssignment(c *gin.Context) {
	if err := h.svc.DeleteAssignment(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Assignment deleted"})
}
