package entity

import (
	"time"
)

// 物料重要度，按单价分档
const (
	CriticalityCritical = "critical"
	CriticalityHigh     = "high"
	CriticalityMedium   = "medium"
	CriticalityLow      = "low"
)

// CriticalityForUnitCost 单价 >1000 critical，>500 high，>100 medium，其余 low
func CriticalityForUnitCost(unitCost float64) string {
	switch {
	case unitCost > 1000:
		return CriticalityCritical
	case unitCost > 500:
		return CriticalityHigh
	case unitCost > 100:
		return CriticalityMedium
	default:
		return CriticalityLow
	}
}

// MaterialStatus 物料跟踪状态
const (
	MaterialStatusPending  = "pending"
	MaterialStatusOrdered  = "ordered"
	MaterialStatusReceived = "received"
	MaterialStatusApproved = "approved"
	MaterialStatusConsumed = "consumed"
)

// ProductionLotMaterial 批次物料跟踪，每个批次按BOM行项各生成一行
type ProductionLotMaterial struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID  string    `json:"production_lot_id" gorm:"size:32;not null;uniqueIndex:uniq_lot_material;index"`
	BOMItemID        string    `json:"bom_item_id" gorm:"size:32;not null;uniqueIndex:uniq_lot_material"`
	RequiredQuantity float64   `json:"required_quantity" gorm:"type:decimal(15,4);not null"`
	OrderedQuantity  float64   `json:"ordered_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	ReceivedQuantity float64   `json:"received_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	ApprovedQuantity float64   `json:"approved_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	RejectedQuantity float64   `json:"rejected_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	ConsumedQuantity float64   `json:"consumed_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	Unit             string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	Status           string    `json:"status" gorm:"size:24;not null;default:pending"`
	Criticality      string    `json:"criticality" gorm:"size:16;not null;default:low"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	BOMItem *BOMItem `json:"bom_item,omitempty" gorm:"foreignKey:BOMItemID"`
}

func (ProductionLotMaterial) TableName() string {
	return "production_lot_materials"
}
