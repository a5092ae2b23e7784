package entity

import (
	"math"
	"time"
)

// DailyProductionEntry 每日生产记录
type DailyProductionEntry struct {
	ID                   string    `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID      string    `json:"production_lot_id" gorm:"size:32;not null;index"`
	ProductionProcessID  *string   `json:"production_process_id" gorm:"size:32;index"`
	EntryDate            time.Time `json:"entry_date" gorm:"not null"`
	PlannedQuantity      float64   `json:"planned_quantity" gorm:"type:decimal(15,4);not null"`
	ActualQuantity       float64   `json:"actual_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	RejectedQuantity     float64   `json:"rejected_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	ReworkQuantity       float64   `json:"rework_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	DowntimeHours        float64   `json:"downtime_hours" gorm:"type:decimal(8,2);not null;default:0"`
	EfficiencyPercentage float64   `json:"efficiency_percentage" gorm:"type:decimal(8,2);not null;default:0"`
	Notes                string    `json:"notes" gorm:"type:text"`
	CreatedBy            string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (DailyProductionEntry) TableName() string {
	return "daily_production_entries"
}

// Efficiency 计划数为0时返回0，否则 round(actual/planned*100)
func Efficiency(planned, actual float64) float64 {
	if planned <= 0 {
		return 0
	}
	return math.Round(actual / planned * 100)
}
