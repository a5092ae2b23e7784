package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// InspectionHandler 质检处理器
type InspectionHandler struct {
	svc *service.InspectionService
}

// NewInspectionHandler 创建质检处理器
func NewInspectionHandler(svc *service.InspectionService) *InspectionHandler {
	return &InspectionHandler{svc: svc}
}

// Create 创建质检单
func (h *InspectionHandler) Create(c *gin.Context) {
	var req service.CreateInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inspection, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, inspection)
}

// List 质检单列表
func (h *InspectionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"lot_id":          c.Query("lot_id"),
		"status":          c.Query("status"),
		"result":          c.Query("result"),
		"inspection_type": c.Query("inspection_type"),
	}

	inspections, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items:      inspections,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 质检单详情含不合格项
func (h *InspectionHandler) Get(c *gin.Context) {
	inspection, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// Start 开始检验
func (h *InspectionHandler) Start(c *gin.Context) {
	inspection, err := h.svc.Start(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// SubmitResults 提交检验结果
func (h *InspectionHandler) SubmitResults(c *gin.Context) {
	var req service.SubmitResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inspection, err := h.svc.SubmitResults(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// Complete 完成检验
func (h *InspectionHandler) Complete(c *gin.Context) {
	var req service.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inspection, err := h.svc.Complete(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// Approve 审批通过
func (h *InspectionHandler) Approve(c *gin.Context) {
	inspection, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// Reject 审批驳回
func (h *InspectionHandler) Reject(c *gin.Context) {
	inspection, err := h.svc.Reject(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, inspection)
}

// Delete 删除草稿质检单
func (h *InspectionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Inspection deleted"})
}

// CreateNonConformance 登记不合格项
func (h *InspectionHandler) CreateNonConformance(c *gin.Context) {
	var req service.CreateNonConformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	nc, err := h.svc.CreateNonConformance(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, nc)
}

// ListNonConformances 质检单的不合格项
func (h *InspectionHandler) ListNonConformances(c *gin.Context) {
	ncs, err := h.svc.ListNonConformances(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"non_conformances": ncs})
}

// Metrics 质检指标
func (h *InspectionHandler) Metrics(c *gin.Context) {
	metrics, err := h.svc.Metrics(c.Request.Context(), c.Query("lot_id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, metrics)
}
