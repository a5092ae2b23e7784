package service

import (
	"context"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
)

// DailyService 每日生产记录服务
type DailyService struct {
	dailyRepo *repository.DailyRepository
	lotRepo   *repository.LotRepository
	owner     *OwnershipService
}

func NewDailyService(dailyRepo *repository.DailyRepository, lotRepo *repository.LotRepository, owner *OwnershipService) *DailyService {
	return &DailyService{dailyRepo: dailyRepo, lotRepo: lotRepo, owner: owner}
}

// CreateDailyEntryRequest 创建每日记录请求
type CreateDailyEntryRequest struct {
	ProductionProcessID *string `json:"production_process_id"`
	EntryDate           string  `json:"entry_date" binding:"required"`
	PlannedQuantity     float64 `json:"planned_quantity"`
	ActualQuantity      float64 `json:"actual_quantity"`
	RejectedQuantity    float64 `json:"rejected_quantity"`
	ReworkQuantity      float64 `json:"rework_quantity"`
	DowntimeHours       float64 `json:"downtime_hours"`
	Notes               string  `json:"notes"`
}

// Create 创建每日生产记录，效率由计划/实际数量推导
func (s *DailyService) Create(ctx context.Context, lotID string, req *CreateDailyEntryRequest, userID string) (*entity.DailyProductionEntry, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, validationErrf("记录日期格式错误: %s", req.EntryDate)
	}
	if req.PlannedQuantity < 0 || req.ActualQuantity < 0 {
		return nil, validationErrf("数量不能为负数")
	}

	e := &entity.DailyProductionEntry{
		ID:                   uuid.New().String()[:32],
		ProductionLotID:      lotID,
		ProductionProcessID:  req.ProductionProcessID,
		EntryDate:            entryDate,
		PlannedQuantity:      req.PlannedQuantity,
		ActualQuantity:       req.ActualQuantity,
		RejectedQuantity:     req.RejectedQuantity,
		ReworkQuantity:       req.ReworkQuantity,
		DowntimeHours:        req.DowntimeHours,
		EfficiencyPercentage: entity.Efficiency(req.PlannedQuantity, req.ActualQuantity),
		Notes:                req.Notes,
		CreatedBy:            userID,
	}
	if err := s.dailyRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByLot 批次的每日记录，按日期升序
func (s *DailyService) ListByLot(ctx context.Context, lotID, userID string) ([]entity.DailyProductionEntry, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	return s.dailyRepo.FindByLot(ctx, lotID)
}

// UpdateDailyEntryRequest 更新每日记录请求
type UpdateDailyEntryRequest struct {
	PlannedQuantity  *float64 `json:"planned_quantity"`
	ActualQuantity   *float64 `json:"actual_quantity"`
	RejectedQuantity *float64 `json:"rejected_quantity"`
	ReworkQuantity   *float64 `json:"rework_quantity"`
	DowntimeHours    *float64 `json:"downtime_hours"`
	Notes            *string  `json:"notes"`
}

// Update 更新每日记录，数量变化后重算效率
func (s *DailyService) Update(ctx context.Context, id string, req *UpdateDailyEntryRequest, userID string) (*entity.DailyProductionEntry, error) {
	e, err := s.dailyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, e.ProductionLotID, userID); err != nil {
		return nil, err
	}

	if req.PlannedQuantity != nil {
		if *req.PlannedQuantity < 0 {
			return nil, validationErrf("数量不能为负数")
		}
		e.PlannedQuantity = *req.PlannedQuantity
	}
	if req.ActualQuantity != nil {
		if *req.ActualQuantity < 0 {
			return nil, validationErrf("数量不能为负数")
		}
		e.ActualQuantity = *req.ActualQuantity
	}
	if req.RejectedQuantity != nil {
		e.RejectedQuantity = *req.RejectedQuantity
	}
	if req.ReworkQuantity != nil {
		e.ReworkQuantity = *req.ReworkQuantity
	}
	if req.DowntimeHours != nil {
		e.DowntimeHours = *req.DowntimeHours
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
	e.EfficiencyPercentage = entity.Efficiency(e.PlannedQuantity, e.ActualQuantity)

	if err := s.dailyRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete 删除每日记录
func (s *DailyService) Delete(ctx context.Context, id, userID string) error {
	e, err := s.dailyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.owner.OwnsLot(ctx, e.ProductionLotID, userID); err != nil {
		return err
	}
	return s.dailyRepo.Delete(ctx, id)
}

// DailyReport 批次每日生产汇总
type DailyReport struct {
	ProductionLotID   string                        `json:"production_lot_id"`
	TotalPlanned      float64                       `json:"total_planned"`
	TotalActual       float64                       `json:"total_actual"`
	TotalRejected     float64                       `json:"total_rejected"`
	TotalRework       float64                       `json:"total_rework"`
	TotalDowntime     float64                       `json:"total_downtime_hours"`
	OverallEfficiency float64                       `json:"overall_efficiency"`
	Entries           []entity.DailyProductionEntry `json:"entries"`
}

// Report 按批次汇总每日记录，整体效率用合计数重新推导
func (s *DailyService) Report(ctx context.Context, lotID, userID string) (*DailyReport, error) {
	entries, err := s.ListByLot(ctx, lotID, userID)
	if err != nil {
		return nil, err
	}
	report := &DailyReport{ProductionLotID: lotID, Entries: entries}
	for _, e := range entries {
		report.TotalPlanned += e.PlannedQuantity
		report.TotalActual += e.ActualQuantity
		report.TotalRejected += e.RejectedQuantity
		report.TotalRework += e.ReworkQuantity
		report.TotalDowntime += e.DowntimeHours
	}
	report.OverallEfficiency = entity.Efficiency(report.TotalPlanned, report.TotalActual)
	return report, nil
}
