package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// DailyHandler 每日生产记录处理器
type DailyHandler struct {
	svc *service.DailyService
}

// NewDailyHandler 创建每日记录处理器
func NewDailyHandler(svc *service.DailyService) *DailyHandler {
	return &DailyHandler{svc: svc}
}

// Create 创建每日记录
func (h *DailyHandler) Create(c *gin.Context) {
	var req service.CreateDailyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, entry)
}

// ListByLot 批次的每日记录
func (h *DailyHandler) ListByLot(c *gin.Context) {
	entries, err := h.svc.ListByLot(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"entries": entries})
}

// Update 更新每日记录
func (h *DailyHandler) Update(c *gin.Context) {
	var req service.UpdateDailyEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, entry)
}

// Delete 删除每日记录
func (h *DailyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Daily entry deleted"})
}

// Report 批次每日生产汇总
func (h *DailyHandler) Report(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, report)
}
