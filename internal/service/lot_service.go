package service

import (
	"context"
	"errors"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LotService 生产批次服务
type LotService struct {
	lotRepo     *repository.LotRepository
	bomRepo     *repository.BOMRepository
	processRepo *repository.ProcessRepository
	owner       *OwnershipService
}

func NewLotService(lotRepo *repository.LotRepository, bomRepo *repository.BOMRepository, processRepo *repository.ProcessRepository, owner *OwnershipService) *LotService {
	return &LotService{
		lotRepo:     lotRepo,
		bomRepo:     bomRepo,
		processRepo: processRepo,
		owner:       owner,
	}
}

// CreateLotRequest 创建批次请求
type CreateLotRequest struct {
	BOMID              string   `json:"bom_id" binding:"required"`
	LotNumber          string   `json:"lot_number" binding:"required"`
	ProductionQuantity float64  `json:"production_quantity" binding:"required,gt=0"`
	PlannedStartDate   string   `json:"planned_start_date" binding:"required"` // YYYY-MM-DD
	PlannedEndDate     string   `json:"planned_end_date" binding:"required"`
	Priority           string   `json:"priority"`
	LotType            string   `json:"lot_type"`
	Notes              string   `json:"notes"`
	SelectedItemIDs    []string `json:"selected_item_ids"`
}

// Create 创建批次：校验BOM所有权与日期，按BOM成本汇总估算总成本，
// 自动生成四道标准工序均分排期窗口。批次、选定行项、工序在同一事务内落库，
// lot_number 冲突由唯一索引拦截。
func (s *LotService) Create(ctx context.Context, req *CreateLotRequest, userID string) (*entity.ProductionLot, error) {
	if err := s.owner.OwnsBOM(ctx, req.BOMID, userID); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", req.PlannedStartDate)
	if err != nil {
		return nil, validationErrf("计划开始日期格式错误: %s", req.PlannedStartDate)
	}
	end, err := time.Parse("2006-01-02", req.PlannedEndDate)
	if err != nil {
		return nil, validationErrf("计划结束日期格式错误: %s", req.PlannedEndDate)
	}
	if !end.After(start) {
		return nil, validationErrf("计划结束日期必须晚于开始日期")
	}

	bomItems, err := s.bomRepo.FindItemsByBOM(ctx, req.BOMID)
	if err != nil {
		return nil, err
	}

	// 估算总成本 = BOM单套成本 × 生产数量
	unitCost := SumItemCosts(bomItems)
	totalCost, _ := unitCost.Mul(decimal.NewFromFloat(req.ProductionQuantity)).Float64()

	lot := &entity.ProductionLot{
		ID:                 uuid.New().String()[:32],
		BOMID:              req.BOMID,
		LotNumber:          req.LotNumber,
		ProductionQuantity: req.ProductionQuantity,
		Status:             entity.LotStatusPlanned,
		PlannedStartDate:   start,
		PlannedEndDate:     end,
		Priority:           req.Priority,
		LotType:            req.LotType,
		TotalEstimatedCost: totalCost,
		Notes:              req.Notes,
		CreatedBy:          userID,
	}
	if lot.Priority == "" {
		lot.Priority = "normal"
	}
	if lot.LotType == "" {
		lot.LotType = "production"
	}

	// 校验选定行项都属于该BOM
	var lotItems []entity.ProductionLotItem
	if len(req.SelectedItemIDs) > 0 {
		known := make(map[string]bool, len(bomItems))
		for _, item := range bomItems {
			known[item.ID] = true
		}
		for _, itemID := range req.SelectedItemIDs {
			if !known[itemID] {
				return nil, validationErrf("选定的行项 %s 不属于该BOM", itemID)
			}
			lotItems = append(lotItems, entity.ProductionLotItem{
				ID:              uuid.New().String()[:32],
				ProductionLotID: lot.ID,
				BOMItemID:       itemID,
			})
		}
	}

	processes := buildStandardProcesses(lot)

	err = s.lotRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		if len(lotItems) > 0 {
			if err := tx.Create(&lotItems).Error; err != nil {
				return err
			}
		}
		return tx.Create(&processes).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErrf("批次号已存在: %s", req.LotNumber)
		}
		return nil, err
	}

	lot.Processes = processes
	return lot, nil
}

// buildStandardProcesses 四道标准工序把 [start, end] 均分为四段，
// 末道工序的结束日期精确等于批次结束日期。
func buildStandardProcesses(lot *entity.ProductionLot) []entity.ProductionProcess {
	total := lot.PlannedEndDate.Sub(lot.PlannedStartDate)
	segment := total / time.Duration(len(entity.StandardProcessNames))

	processes := make([]entity.ProductionProcess, 0, len(entity.StandardProcessNames))
	for i, name := range entity.StandardProcessNames {
		pStart := lot.PlannedStartDate.Add(time.Duration(i) * segment)
		pEnd := lot.PlannedStartDate.Add(time.Duration(i+1) * segment)
		if i == len(entity.StandardProcessNames)-1 {
			pEnd = lot.PlannedEndDate
		}
		processes = append(processes, entity.ProductionProcess{
			ID:               uuid.New().String()[:32],
			ProductionLotID:  lot.ID,
			ProcessSequence:  i + 1,
			ProcessName:      name,
			Status:           entity.ProcessStatusPending,
			PlannedStartDate: pStart,
			PlannedEndDate:   pEnd,
		})
	}
	return processes
}

// GetByID 获取批次详情（含工序）
func (s *LotService) GetByID(ctx context.Context, id, userID string) (*entity.ProductionLot, error) {
	if err := s.owner.OwnsLot(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.lotRepo.FindByIDWithProcesses(ctx, id)
}

// List 批次列表
func (s *LotService) List(ctx context.Context, userID string, params repository.LotListParams) ([]entity.ProductionLot, int64, error) {
	return s.lotRepo.FindByCreator(ctx, userID, params)
}

// UpdateLotRequest 更新批次请求
type UpdateLotRequest struct {
	ProductionQuantity *float64 `json:"production_quantity"`
	Status             *string  `json:"status"`
	PlannedStartDate   *string  `json:"planned_start_date"`
	PlannedEndDate     *string  `json:"planned_end_date"`
	Priority           *string  `json:"priority"`
	Notes              *string  `json:"notes"`
}

// Update 更新批次。状态变更按迁移表校验，非法迁移的错误信息
// 会列出允许的目标状态。
func (s *LotService) Update(ctx context.Context, id string, req *UpdateLotRequest, userID string) (*entity.ProductionLot, error) {
	if err := s.owner.OwnsLot(ctx, id, userID); err != nil {
		return nil, err
	}
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := lot.Status
	if req.Status != nil && *req.Status != lot.Status {
		if !entity.ValidLotStatus(*req.Status) {
			return nil, validationErrf("未知的批次状态: %s", *req.Status)
		}
		if !entity.CanTransitionLotStatus(lot.Status, *req.Status) {
			return nil, validationErrf("%s", entity.LotTransitionError(lot.Status, *req.Status).Error())
		}
		applyStatusChange(lot, *req.Status)
	}
	if req.ProductionQuantity != nil {
		if *req.ProductionQuantity <= 0 {
			return nil, validationErrf("生产数量必须大于0")
		}
		lot.ProductionQuantity = *req.ProductionQuantity
	}
	if req.PlannedStartDate != nil {
		t, err := time.Parse("2006-01-02", *req.PlannedStartDate)
		if err != nil {
			return nil, validationErrf("计划开始日期格式错误: %s", *req.PlannedStartDate)
		}
		lot.PlannedStartDate = t
	}
	if req.PlannedEndDate != nil {
		t, err := time.Parse("2006-01-02", *req.PlannedEndDate)
		if err != nil {
			return nil, validationErrf("计划结束日期格式错误: %s", *req.PlannedEndDate)
		}
		lot.PlannedEndDate = t
	}
	if req.Priority != nil {
		lot.Priority = *req.Priority
	}
	if req.Notes != nil {
		lot.Notes = *req.Notes
	}

	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, err
	}
	if lot.Status != prevStatus {
		sse.PublishLotStatusChange(lot.ID, prevStatus, lot.Status)
	}
	return lot, nil
}

// applyStatusChange 落实状态并顺带维护实际起止时间
func applyStatusChange(lot *entity.ProductionLot, status string) {
	now := time.Now()
	switch status {
	case entity.LotStatusInProduction:
		if lot.ActualStartDate == nil {
			lot.ActualStartDate = &now
		}
	case entity.LotStatusCompleted:
		lot.ActualEndDate = &now
	}
	lot.Status = status
}

// Delete 删除批次，仅创建人可删
func (s *LotService) Delete(ctx context.Context, id, userID string) error {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if lot.CreatedBy != userID {
		return repository.ErrNotFound
	}
	return s.lotRepo.Delete(ctx, id)
}

// UpdateStatusByProgress 按工序完成度推导批次状态：完成度>0 进入
// in_production，全部完成进入 completed。推导出的迁移仍走同一张迁移表，
// 不在表内的跳变保持原状态。
func (s *LotService) UpdateStatusByProgress(ctx context.Context, id, userID string) (*entity.ProductionLot, bool, error) {
	if err := s.owner.OwnsLot(ctx, id, userID); err != nil {
		return nil, false, err
	}
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	processes, err := s.processRepo.FindByLot(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if len(processes) == 0 {
		return lot, false, nil
	}

	var sum float64
	for _, p := range processes {
		sum += p.CompletionPercentage
	}
	avg := sum / float64(len(processes))

	var target string
	switch {
	case avg >= 100:
		target = entity.LotStatusCompleted
	case avg > 0:
		target = entity.LotStatusInProduction
	default:
		return lot, false, nil
	}

	if target == lot.Status || !entity.CanTransitionLotStatus(lot.Status, target) {
		return lot, false, nil
	}

	from := lot.Status
	applyStatusChange(lot, target)
	if err := s.lotRepo.Update(ctx, lot); err != nil {
		return nil, false, err
	}
	sse.PublishLotStatusChange(lot.ID, from, lot.Status)
	return lot, true, nil
}

// GetSelectedItems 批次选定的BOM行项
func (s *LotService) GetSelectedItems(ctx context.Context, lotID, userID string) ([]entity.ProductionLotItem, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	return s.lotRepo.FindItems(ctx, lotID)
}
