package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// RemarkHandler 备注/问题单处理器
type RemarkHandler struct {
	svc *service.RemarkService
}

// NewRemarkHandler 创建备注处理器
func NewRemarkHandler(svc *service.RemarkService) *RemarkHandler {
	return &RemarkHandler{svc: svc}
}

// Create 创建备注
func (h *RemarkHandler) Create(c *gin.Context) {
	var req service.CreateRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	remark, err := h.svc.Create(c.Request.Context(), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, remark)
}

// List 备注列表
func (h *RemarkHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.RemarkListParams{
		LotID:     c.Query("lot_id"),
		AppliesTo: c.Query("applies_to"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Page:      page,
		PageSize:  pageSize,
	}

	remarks, total, err := h.svc.List(c.Request.Context(), params, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items:      remarks,
		Pagination: NewPagination(page, pageSize, total),
	})
}

// Get 备注详情含评论
func (h *RemarkHandler) Get(c *gin.Context) {
	remark, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, remark)
}

// Update 更新备注
func (h *RemarkHandler) Update(c *gin.Context) {
	var req service.UpdateRemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	remark, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, remark)
}

// Delete 删除备注及其评论
func (h *RemarkHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Remark deleted"})
}

// CreateComment 在备注下创建评论
func (h *RemarkHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	comment, err := h.svc.CreateComment(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, comment)
}

// ListComments 备注的评论列表
func (h *RemarkHandler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"comments": comments})
}
