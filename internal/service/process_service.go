package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProcessService 生产工序/子任务服务
type ProcessService struct {
	processRepo *repository.ProcessRepository
	lotRepo     *repository.LotRepository
	bomRepo     *repository.BOMRepository
	owner       *OwnershipService
}

func NewProcessService(processRepo *repository.ProcessRepository, lotRepo *repository.LotRepository, bomRepo *repository.BOMRepository, owner *OwnershipService) *ProcessService {
	return &ProcessService{
		processRepo: processRepo,
		lotRepo:     lotRepo,
		bomRepo:     bomRepo,
		owner:       owner,
	}
}

// CreateProcessRequest 创建工序请求
type CreateProcessRequest struct {
	ProcessName        string  `json:"process_name" binding:"required"`
	PlannedStartDate   string  `json:"planned_start_date"`
	PlannedEndDate     string  `json:"planned_end_date"`
	DependsOnProcessID *string `json:"depends_on_process_id"`
}

// Create 创建工序。序号取批次当前最大值+1，取号与落库在同一事务内。
func (s *ProcessService) Create(ctx context.Context, lotID string, req *CreateProcessRequest, userID string) (*entity.ProductionProcess, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}

	process := &entity.ProductionProcess{
		ID:                 uuid.New().String()[:32],
		ProductionLotID:    lotID,
		ProcessName:        req.ProcessName,
		Status:             entity.ProcessStatusPending,
		DependsOnProcessID: req.DependsOnProcessID,
	}
	if req.PlannedStartDate != "" {
		t, err := time.Parse("2006-01-02", req.PlannedStartDate)
		if err != nil {
			return nil, validationErrf("计划开始日期格式错误: %s", req.PlannedStartDate)
		}
		process.PlannedStartDate = t
	}
	if req.PlannedEndDate != "" {
		t, err := time.Parse("2006-01-02", req.PlannedEndDate)
		if err != nil {
			return nil, validationErrf("计划结束日期格式错误: %s", req.PlannedEndDate)
		}
		process.PlannedEndDate = t
	}

	err := s.processRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.processRepo.NextSequence(tx, lotID)
		if err != nil {
			return err
		}
		process.ProcessSequence = seq
		return tx.Create(process).Error
	})
	if err != nil {
		return nil, err
	}
	return process, nil
}

// GetByID 获取工序详情
func (s *ProcessService) GetByID(ctx context.Context, id, userID string) (*entity.ProductionProcess, error) {
	if err := s.owner.OwnsProcess(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.processRepo.FindByID(ctx, id)
}

// ListByLot 批次的全部工序
func (s *ProcessService) ListByLot(ctx context.Context, lotID, userID string) ([]entity.ProductionProcess, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	return s.processRepo.FindByLot(ctx, lotID)
}

// MachineAllocation 机台分配
type MachineAllocation struct {
	MachineID   string `json:"machine_id"`
	MachineName string `json:"machine_name"`
	Shift       string `json:"shift"`
	Operator    string `json:"operator"`
}

// UpdateProcessRequest 更新工序请求
type UpdateProcessRequest struct {
	ProcessName          *string             `json:"process_name"`
	Status               *string             `json:"status"`
	CompletionPercentage *float64            `json:"completion_percentage"`
	PlannedStartDate     *string             `json:"planned_start_date"`
	PlannedEndDate       *string             `json:"planned_end_date"`
	DependsOnProcessID   *string             `json:"depends_on_process_id"`
	MachineAllocations   []MachineAllocation `json:"machine_allocations"`
}

// Update 部分更新工序；机台分配序列化进JSON列
func (s *ProcessService) Update(ctx context.Context, id string, req *UpdateProcessRequest, userID string) (*entity.ProductionProcess, error) {
	if err := s.owner.OwnsProcess(ctx, id, userID); err != nil {
		return nil, err
	}
	process, err := s.processRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProcessName != nil {
		process.ProcessName = *req.ProcessName
	}
	if req.Status != nil {
		process.Status = *req.Status
		now := time.Now()
		switch *req.Status {
		case entity.ProcessStatusInProgress:
			if process.ActualStartDate == nil {
				process.ActualStartDate = &now
			}
		case entity.ProcessStatusCompleted:
			process.ActualEndDate = &now
			process.CompletionPercentage = 100
		}
	}
	if req.CompletionPercentage != nil {
		if *req.CompletionPercentage < 0 || *req.CompletionPercentage > 100 {
			return nil, validationErrf("完成度必须在0到100之间")
		}
		process.CompletionPercentage = *req.CompletionPercentage
	}
	if req.PlannedStartDate != nil {
		t, err := time.Parse("2006-01-02", *req.PlannedStartDate)
		if err != nil {
			return nil, validationErrf("计划开始日期格式错误: %s", *req.PlannedStartDate)
		}
		process.PlannedStartDate = t
	}
	if req.PlannedEndDate != nil {
		t, err := time.Parse("2006-01-02", *req.PlannedEndDate)
		if err != nil {
			return nil, validationErrf("计划结束日期格式错误: %s", *req.PlannedEndDate)
		}
		process.PlannedEndDate = t
	}
	if req.DependsOnProcessID != nil {
		process.DependsOnProcessID = req.DependsOnProcessID
	}
	if req.MachineAllocations != nil {
		raw, err := json.Marshal(req.MachineAllocations)
		if err != nil {
			return nil, validationErrf("机台分配序列化失败")
		}
		process.MachineAllocation = datatypes.JSON(raw)
	}

	if err := s.processRepo.Update(ctx, process); err != nil {
		return nil, err
	}
	return process, nil
}

// Delete 删除工序
func (s *ProcessService) Delete(ctx context.Context, id, userID string) error {
	if err := s.owner.OwnsProcess(ctx, id, userID); err != nil {
		return err
	}
	return s.processRepo.Delete(ctx, id)
}

// SubtaskBomPartRequest 子任务消耗的BOM零件
type SubtaskBomPartRequest struct {
	BOMItemID        string  `json:"bom_item_id"`
	RequiredQuantity float64 `json:"required_quantity"`
	Unit             string  `json:"unit"`
}

// CreateSubtaskRequest 创建子任务请求
type CreateSubtaskRequest struct {
	TaskName               string                  `json:"task_name" binding:"required"`
	AssignedOperator       string                  `json:"assigned_operator"`
	EstimatedDurationHours float64                 `json:"estimated_duration_hours"`
	BomParts               []SubtaskBomPartRequest `json:"bom_parts"`
}

// CreateSubtask 创建子任务及BOM零件需求。零件行先过滤校验
// （数量必须为正、单位必填、行项必须存在），再与子任务一并原子落库。
func (s *ProcessService) CreateSubtask(ctx context.Context, processID string, req *CreateSubtaskRequest, userID string) (*entity.ProcessSubtask, error) {
	if err := s.owner.OwnsProcess(ctx, processID, userID); err != nil {
		return nil, err
	}

	var reqs []entity.SubtaskBomRequirement
	if len(req.BomParts) > 0 {
		ids := make([]string, 0, len(req.BomParts))
		for _, part := range req.BomParts {
			if part.BOMItemID == "" {
				return nil, validationErrf("BOM零件id不能为空")
			}
			if part.RequiredQuantity <= 0 {
				return nil, validationErrf("BOM零件 %s 的需求数量必须大于0", part.BOMItemID)
			}
			if part.Unit == "" {
				return nil, validationErrf("BOM零件 %s 缺少单位", part.BOMItemID)
			}
			ids = append(ids, part.BOMItemID)
		}

		items, err := s.bomRepo.FindItemsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		known := make(map[string]bool, len(items))
		for _, item := range items {
			known[item.ID] = true
		}
		for _, part := range req.BomParts {
			if !known[part.BOMItemID] {
				return nil, validationErrf("BOM零件 %s 不存在", part.BOMItemID)
			}
			reqs = append(reqs, entity.SubtaskBomRequirement{
				ID:                uuid.New().String()[:32],
				BOMItemID:         part.BOMItemID,
				RequiredQuantity:  part.RequiredQuantity,
				Unit:              part.Unit,
				RequirementStatus: "pending",
			})
		}
	}

	seq, err := s.processRepo.NextSubtaskSequence(ctx, processID)
	if err != nil {
		return nil, err
	}

	subtask := &entity.ProcessSubtask{
		ID:                     uuid.New().String()[:32],
		ProductionProcessID:    processID,
		TaskName:               req.TaskName,
		TaskSequence:           seq,
		Status:                 entity.SubtaskStatusPending,
		AssignedOperator:       req.AssignedOperator,
		EstimatedDurationHours: req.EstimatedDurationHours,
	}

	if err := s.processRepo.CreateSubtaskWithRequirements(ctx, subtask, reqs); err != nil {
		return nil, err
	}
	subtask.Requirements = reqs
	return subtask, nil
}

// GetSubtask 获取子任务详情
func (s *ProcessService) GetSubtask(ctx context.Context, id, userID string) (*entity.ProcessSubtask, error) {
	if err := s.owner.OwnsSubtask(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.processRepo.FindSubtaskByID(ctx, id)
}

// ListSubtasks 工序的全部子任务
func (s *ProcessService) ListSubtasks(ctx context.Context, processID, userID string) ([]entity.ProcessSubtask, error) {
	if err := s.owner.OwnsProcess(ctx, processID, userID); err != nil {
		return nil, err
	}
	return s.processRepo.FindSubtasksByProcess(ctx, processID)
}

// UpdateSubtaskRequest 更新子任务请求
type UpdateSubtaskRequest struct {
	TaskName               *string  `json:"task_name"`
	Status                 *string  `json:"status"`
	AssignedOperator       *string  `json:"assigned_operator"`
	EstimatedDurationHours *float64 `json:"estimated_duration_hours"`
}

// UpdateSubtask 部分更新子任务
func (s *ProcessService) UpdateSubtask(ctx context.Context, id string, req *UpdateSubtaskRequest, userID string) (*entity.ProcessSubtask, error) {
	if err := s.owner.OwnsSubtask(ctx, id, userID); err != nil {
		return nil, err
	}
	subtask, err := s.processRepo.FindSubtaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TaskName != nil {
		subtask.TaskName = *req.TaskName
	}
	if req.Status != nil {
		subtask.Status = *req.Status
	}
	if req.AssignedOperator != nil {
		subtask.AssignedOperator = *req.AssignedOperator
	}
	if req.EstimatedDurationHours != nil {
		subtask.EstimatedDurationHours = *req.EstimatedDurationHours
	}

	if err := s.processRepo.UpdateSubtask(ctx, subtask); err != nil {
		return nil, err
	}
	return subtask, nil
}

// DeleteSubtask 删除子任务
func (s *ProcessService) DeleteSubtask(ctx context.Context, id, userID string) error {
	if err := s.owner.OwnsSubtask(ctx, id, userID); err != nil {
		return err
	}
	return s.processRepo.DeleteSubtask(ctx, id)
}
