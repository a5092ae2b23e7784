package service

import (
	"context"
	"fmt"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/abushana-oss/mithran-mes/internal/sse"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 物料短缺告警阈值：合格数量低于需求的80%告警HIGH，低于50%升级CRITICAL
const (
	shortageHighRatio     = 0.8
	shortageCriticalRatio = 0.5
)

// MaterialService 批次物料跟踪服务
type MaterialService struct {
	materialRepo *repository.MaterialRepository
	lotRepo      *repository.LotRepository
	bomRepo      *repository.BOMRepository
	owner        *OwnershipService
}

func NewMaterialService(materialRepo *repository.MaterialRepository, lotRepo *repository.LotRepository, bomRepo *repository.BOMRepository, owner *OwnershipService) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		lotRepo:      lotRepo,
		bomRepo:      bomRepo,
		owner:        owner,
	}
}

// InitializeLotMaterials 按BOM行项初始化批次物料行：
// 需求数量 = 行项数量 × 批次生产数量，重要度按行项单价分档。
// 重复初始化是幂等的，已存在的行保持不变。
func (s *MaterialService) InitializeLotMaterials(ctx context.Context, lotID, userID string) ([]entity.ProductionLotMaterial, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	items, err := s.bomRepo.FindItemsByBOM(ctx, lot.BOMID)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromFloat(lot.ProductionQuantity)
	materials := make([]entity.ProductionLotMaterial, 0, len(items))
	for _, item := range items {
		required, _ := decimal.NewFromFloat(item.Quantity).Mul(qty).Float64()
		materials = append(materials, entity.ProductionLotMaterial{
			ID:               uuid.New().String()[:32],
			ProductionLotID:  lotID,
			BOMItemID:        item.ID,
			RequiredQuantity: required,
			Unit:             item.Unit,
			Status:           entity.MaterialStatusPending,
			Criticality:      entity.CriticalityForUnitCost(item.UnitCost),
		})
	}

	if err := s.materialRepo.BatchCreate(ctx, materials); err != nil {
		return nil, err
	}
	return s.materialRepo.FindByLot(ctx, lotID)
}

// ListByLot 批次的全部物料行
func (s *MaterialService) ListByLot(ctx context.Context, lotID, userID string) ([]entity.ProductionLotMaterial, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	return s.materialRepo.FindByLot(ctx, lotID)
}

// UpdateMaterialRequest 更新物料行请求
type UpdateMaterialRequest struct {
	OrderedQuantity  *float64 `json:"ordered_quantity"`
	ReceivedQuantity *float64 `json:"received_quantity"`
	ApprovedQuantity *float64 `json:"approved_quantity"`
	RejectedQuantity *float64 `json:"rejected_quantity"`
	ConsumedQuantity *float64 `json:"consumed_quantity"`
	Status           *string  `json:"status"`
}

// UpdateMaterial 自由的部分更新，不在数量字段之间强加约束
func (s *MaterialService) UpdateMaterial(ctx context.Context, id string, req *UpdateMaterialRequest, userID string) (*entity.ProductionLotMaterial, error) {
	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, m.ProductionLotID, userID); err != nil {
		return nil, err
	}

	if req.OrderedQuantity != nil {
		m.OrderedQuantity = *req.OrderedQuantity
	}
	if req.ReceivedQuantity != nil {
		m.ReceivedQuantity = *req.ReceivedQuantity
	}
	if req.ApprovedQuantity != nil {
		m.ApprovedQuantity = *req.ApprovedQuantity
	}
	if req.RejectedQuantity != nil {
		m.RejectedQuantity = *req.RejectedQuantity
	}
	if req.ConsumedQuantity != nil {
		m.ConsumedQuantity = *req.ConsumedQuantity
	}
	if req.Status != nil {
		m.Status = *req.Status
	}

	if err := s.materialRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// ShortageSeverity 物料短缺级别；无短缺返回空串
func ShortageSeverity(required, approved float64) string {
	if required <= 0 {
		return ""
	}
	ratio := approved / required
	switch {
	case ratio < shortageCriticalRatio:
		return entity.AlertSeverityCritical
	case ratio < shortageHighRatio:
		return entity.AlertSeverityHigh
	default:
		return ""
	}
}

// SynthesizeShortageAlerts 读取时实时合成短缺告警，不落库
func SynthesizeShortageAlerts(materials []entity.ProductionLotMaterial) []entity.ProductionAlert {
	var alerts []entity.ProductionAlert
	for _, m := range materials {
		severity := ShortageSeverity(m.RequiredQuantity, m.ApprovedQuantity)
		if severity == "" {
			continue
		}
		name := m.BOMItemID
		if m.BOMItem != nil {
			name = m.BOMItem.Name
		}
		alerts = append(alerts, entity.ProductionAlert{
			ID:              "shortage-" + m.ID,
			ProductionLotID: m.ProductionLotID,
			AlertType:       "material_shortage",
			Severity:        severity,
			Status:          entity.AlertStatusActive,
			Source:          entity.AlertSourceShortage,
			Message: fmt.Sprintf("物料 %s 短缺: 需求 %.2f，合格 %.2f",
				name, m.RequiredQuantity, m.ApprovedQuantity),
		})
	}
	return alerts
}

// ListAlerts 批次告警 = 持久化告警 + 实时合成的短缺告警
func (s *MaterialService) ListAlerts(ctx context.Context, lotID, status, userID string) ([]entity.ProductionAlert, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	alerts, err := s.materialRepo.FindAlertsByLot(ctx, lotID, status)
	if err != nil {
		return nil, err
	}
	if status == "" || status == entity.AlertStatusActive {
		materials, err := s.materialRepo.FindByLot(ctx, lotID)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, SynthesizeShortageAlerts(materials)...)
	}
	return alerts, nil
}

// CreateAlertRequest 手工创建告警请求
type CreateAlertRequest struct {
	AlertType string `json:"alert_type" binding:"required"`
	Severity  string `json:"severity" binding:"required"`
	Message   string `json:"message"`
}

// CreateAlert 手工创建告警并广播给在线客户端
func (s *MaterialService) CreateAlert(ctx context.Context, lotID string, req *CreateAlertRequest, userID string) (*entity.ProductionAlert, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	alert := &entity.ProductionAlert{
		ID:              uuid.New().String()[:32],
		ProductionLotID: lotID,
		AlertType:       req.AlertType,
		Severity:        req.Severity,
		Status:          entity.AlertStatusActive,
		Source:          entity.AlertSourceManual,
		Message:         req.Message,
		CreatedBy:       userID,
	}
	if err := s.materialRepo.CreateAlert(ctx, alert); err != nil {
		return nil, err
	}
	sse.PublishAlert(lotID, alert.ID, alert.Severity, alert.AlertType)
	return alert, nil
}

// ResolveAlert 关闭告警
func (s *MaterialService) ResolveAlert(ctx context.Context, id, userID string) (*entity.ProductionAlert, error) {
	alert, err := s.materialRepo.FindAlertByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, alert.ProductionLotID, userID); err != nil {
		return nil, err
	}
	now := time.Now()
	alert.Status = entity.AlertStatusResolved
	alert.ResolvedBy = userID
	alert.ResolvedAt = &now
	if err := s.materialRepo.UpdateAlert(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}
