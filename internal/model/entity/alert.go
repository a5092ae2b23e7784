package entity

import (
	"time"
)

// 告警严重级别
const (
	AlertSeverityLow      = "LOW"
	AlertSeverityMedium   = "MEDIUM"
	AlertSeverityHigh     = "HIGH"
	AlertSeverityCritical = "CRITICAL"
)

// 告警状态
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// 告警来源
const (
	AlertSourceManual   = "manual"
	AlertSourceShortage = "material_shortage"
)

// ProductionAlert 生产告警。物料短缺告警在读取时实时合成，不落库；
// 这里只保存手工创建的告警。
type ProductionAlert struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID string     `json:"production_lot_id" gorm:"size:32;not null;index"`
	AlertType       string     `json:"alert_type" gorm:"size:32;not null"`
	Severity        string     `json:"severity" gorm:"size:16;not null"`
	Status          string     `json:"status" gorm:"size:16;not null;default:active"`
	Source          string     `json:"source" gorm:"size:32;not null;default:manual"`
	Message         string     `json:"message" gorm:"type:text"`
	CreatedBy       string     `json:"created_by" gorm:"size:32"`
	ResolvedBy      string     `json:"resolved_by" gorm:"size:32"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (ProductionAlert) TableName() string {
	return "production_material_alerts"
}
