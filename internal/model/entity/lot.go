package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LotStatus 生产批次状态
const (
	LotStatusPlanned          = "planned"
	LotStatusMaterialsOrdered = "materials_ordered"
	LotStatusInProduction     = "in_production"
	LotStatusOnHold           = "on_hold"
	LotStatusCompleted        = "completed"
	LotStatusCancelled        = "cancelled"
)

// lotStatusTransitions 状态迁移表。completed/cancelled 允许有限回退
// （completed→on_hold 复查、cancelled→planned 重新排产）。
var lotStatusTransitions = map[string][]string{
	LotStatusPlanned:          {LotStatusMaterialsOrdered, LotStatusInProduction, LotStatusCancelled},
	LotStatusMaterialsOrdered: {LotStatusInProduction, LotStatusOnHold, LotStatusCancelled},
	LotStatusInProduction:     {LotStatusOnHold, LotStatusCompleted, LotStatusCancelled},
	LotStatusOnHold:           {LotStatusInProduction, LotStatusCancelled},
	LotStatusCompleted:        {LotStatusOnHold},
	LotStatusCancelled:        {LotStatusPlanned},
}

// ValidLotStatus 判断批次状态是否合法
func ValidLotStatus(s string) bool {
	_, ok := lotStatusTransitions[s]
	return ok
}

// CanTransitionLotStatus 判断 from→to 是否在迁移表内
func CanTransitionLotStatus(from, to string) bool {
	for _, next := range lotStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedLotTransitions 返回某状态允许迁移到的状态集合（稳定排序）
func AllowedLotTransitions(from string) []string {
	next := append([]string(nil), lotStatusTransitions[from]...)
	sort.Strings(next)
	return next
}

// LotTransitionError 非法状态迁移错误，错误信息列出允许的目标状态
func LotTransitionError(from, to string) error {
	return fmt.Errorf("批次状态不允许从 %s 变更为 %s，允许的目标状态: %s",
		from, to, strings.Join(AllowedLotTransitions(from), ", "))
}

// ProductionLot 生产批次
type ProductionLot struct {
	ID                 string     `json:"id" gorm:"primaryKey;size:32"`
	BOMID              string     `json:"bom_id" gorm:"size:32;not null;index"`
	LotNumber          string     `json:"lot_number" gorm:"size:64;not null;uniqueIndex"`
	ProductionQuantity float64    `json:"production_quantity" gorm:"type:decimal(15,4);not null"`
	Status             string     `json:"status" gorm:"size:24;not null;default:planned"`
	PlannedStartDate   time.Time  `json:"planned_start_date" gorm:"not null"`
	PlannedEndDate     time.Time  `json:"planned_end_date" gorm:"not null"`
	ActualStartDate    *time.Time `json:"actual_start_date"`
	ActualEndDate      *time.Time `json:"actual_end_date"`
	Priority           string     `json:"priority" gorm:"size:16;not null;default:normal"`
	LotType            string     `json:"lot_type" gorm:"size:32;not null;default:production"`
	TotalEstimatedCost float64    `json:"total_estimated_cost" gorm:"type:decimal(15,4)"`
	Notes              string     `json:"notes" gorm:"type:text"`
	CreatedBy          string     `json:"created_by" gorm:"size:32;not null;index"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// 关联
	BOM       *BOM                `json:"bom,omitempty" gorm:"foreignKey:BOMID"`
	Items     []ProductionLotItem `json:"items,omitempty" gorm:"foreignKey:ProductionLotID"`
	Processes []ProductionProcess `json:"processes,omitempty" gorm:"foreignKey:ProductionLotID"`
}

func (ProductionLot) TableName() string {
	return "production_lots"
}

// ProductionLotItem 批次选定的BOM行项
type ProductionLotItem struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID string    `json:"production_lot_id" gorm:"size:32;not null;index"`
	BOMItemID       string    `json:"bom_item_id" gorm:"size:32;not null"`
	CreatedAt       time.Time `json:"created_at"`

	BOMItem *BOMItem `json:"bom_item,omitempty" gorm:"foreignKey:BOMItemID"`
}

func (ProductionLotItem) TableName() string {
	return "production_lot_items"
}
