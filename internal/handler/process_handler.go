package handler

import (
	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// ProcessHandler 工序与子任务处理器
type ProcessHandler struct {
	svc *service.ProcessService
}

// NewProcessHandler 创建工序处理器
func NewProcessHandler(svc *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{svc: svc}
}

// Create 在批次下追加工序
func (h *ProcessHandler) Create(c *gin.Context) {
	var req service.CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	process, err := h.svc.Create(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, process)
}

// ListByLot 批次的工序列表，按序号排列
func (h *ProcessHandler) ListByLot(c *gin.Context) {
	processes, err := h.svc.ListByLot(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"processes": processes})
}

// Get 工序详情
func (h *ProcessHandler) Get(c *gin.Context) {
	process, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, process)
}

// Update 更新工序（进度、状态、机台分配）
func (h *ProcessHandler) Update(c *gin.Context) {
	var req service.UpdateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	process, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, process)
}

// Delete 删除工序及其子任务
func (h *ProcessHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Process deleted"})
}

// CreateSubtask 在工序下创建子任务（含BOM零件需求）
func (h *ProcessHandler) CreateSubtask(c *gin.Context) {
	var req service.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	subtask, err := h.svc.CreateSubtask(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, subtask)
}

// ListSubtasks 工序的子任务列表
func (h *ProcessHandler) ListSubtasks(c *gin.Context) {
	subtasks, err := h.svc.ListSubtasks(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"subtasks": subtasks})
}

// GetSubtask 子任务详情含零件需求
func (h *ProcessHandler) GetSubtask(c *gin.Context) {
	subtask, err := h.svc.GetSubtask(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, subtask)
}

// UpdateSubtask 更新子任务
func (h *ProcessHandler) UpdateSubtask(c *gin.Context) {
	var req service.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	subtask, err := h.svc.UpdateSubtask(c.Request.Context(), c.Param("id"), &req, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, subtask)
}

// DeleteSubtask 删除子任务及零件需求
func (h *ProcessHandler) DeleteSubtask(c *gin.Context) {
	if err := h.svc.DeleteSubtask(c.Request.Context(), c.Param("id"), GetUserID(c)); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{"message": "Subtask deleted"})
}
