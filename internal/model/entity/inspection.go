package entity

import (
	"time"

	"gorm.io/datatypes"
)

// InspectionStatus 质检单状态
const (
	InspectionStatusDraft      = "draft"
	InspectionStatusInProgress = "in_progress"
	InspectionStatusCompleted  = "completed"
	InspectionStatusApproved   = "approved"
	InspectionStatusRejected   = "rejected"
)

// InspectionResult 质检结论
const (
	InspectionResultPassed      = "passed"
	InspectionResultFailed      = "failed"
	InspectionResultConditional = "conditional"
)

// QualityInspection 质检单
type QualityInspection struct {
	ID              string         `json:"id" gorm:"primaryKey;size:32"`
	InspectionCode  string         `json:"inspection_code" gorm:"size:64;not null;uniqueIndex"`
	ProductionLotID string         `json:"production_lot_id" gorm:"size:32;not null;index"`
	ProcessID       *string        `json:"process_id" gorm:"size:32"`
	InspectionType  string         `json:"inspection_type" gorm:"size:32;not null;default:in_process"`
	Status          string         `json:"status" gorm:"size:24;not null;default:draft"`
	Result          string         `json:"result" gorm:"size:24"`
	SampleQuantity  float64        `json:"sample_quantity" gorm:"type:decimal(15,4)"`
	PassedQuantity  float64        `json:"passed_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	FailedQuantity  float64        `json:"failed_quantity" gorm:"type:decimal(15,4);not null;default:0"`
	ResultItems     datatypes.JSON `json:"result_items" gorm:"type:jsonb"`
	InspectorID     string         `json:"inspector_id" gorm:"size:32"`
	ApprovedBy      string         `json:"approved_by" gorm:"size:32"`
	Notes           string         `json:"notes" gorm:"type:text"`
	InspectedAt     *time.Time     `json:"inspected_at"`
	ApprovedAt      *time.Time     `json:"approved_at"`
	CreatedBy       string         `json:"created_by" gorm:"size:32;not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	NonConformances []NonConformance `json:"non_conformances,omitempty" gorm:"foreignKey:InspectionID"`
}

func (QualityInspection) TableName() string {
	return "quality_inspections"
}

// NonConformance 不合格项
type NonConformance struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	InspectionID string     `json:"inspection_id" gorm:"size:32;not null;index"`
	Description  string     `json:"description" gorm:"type:text;not null"`
	Severity     string     `json:"severity" gorm:"size:16;not null;default:MEDIUM"`
	Disposition  string     `json:"disposition" gorm:"size:32"`
	Status       string     `json:"status" gorm:"size:16;not null;default:OPEN"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedBy    string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (NonConformance) TableName() string {
	return "non_conformances"
}
