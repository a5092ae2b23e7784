package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessStatus 工序状态
const (
	ProcessStatusPending    = "pending"
	ProcessStatusInProgress = "in_progress"
	ProcessStatusCompleted  = "completed"
	ProcessStatusOnHold     = "on_hold"
)

// StandardProcessNames 新建批次时自动创建的四道标准工序，顺序固定
var StandardProcessNames = []string{
	"Raw Material",
	"Process Conversion",
	"Inspection",
	"Packing",
}

// ProductionProcess 生产工序
type ProductionProcess struct {
	ID                   string         `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID      string         `json:"production_lot_id" gorm:"size:32;not null;index"`
	ProcessSequence      int            `json:"process_sequence" gorm:"not null"`
	ProcessName          string         `json:"process_name" gorm:"size:128;not null"`
	Status               string         `json:"status" gorm:"size:24;not null;default:pending"`
	CompletionPercentage float64        `json:"completion_percentage" gorm:"type:decimal(5,2);not null;default:0"`
	PlannedStartDate     time.Time      `json:"planned_start_date"`
	PlannedEndDate       time.Time      `json:"planned_end_date"`
	ActualStartDate      *time.Time     `json:"actual_start_date"`
	ActualEndDate        *time.Time     `json:"actual_end_date"`
	DependsOnProcessID   *string        `json:"depends_on_process_id" gorm:"size:32"`
	MachineAllocation    datatypes.JSON `json:"machine_allocation" gorm:"type:jsonb"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	// 关联
	Lot      *ProductionLot   `json:"lot,omitempty" gorm:"foreignKey:ProductionLotID"`
	Subtasks []ProcessSubtask `json:"subtasks,omitempty" gorm:"foreignKey:ProductionProcessID"`
}

func (ProductionProcess) TableName() string {
	return "production_processes"
}

// SubtaskStatus 子任务状态
const (
	SubtaskStatusPending    = "pending"
	SubtaskStatusInProgress = "in_progress"
	SubtaskStatusCompleted  = "completed"
)

// ProcessSubtask 工序子任务
type ProcessSubtask struct {
	ID                     string    `json:"id" gorm:"primaryKey;size:32"`
	ProductionProcessID    string    `json:"production_process_id" gorm:"size:32;not null;index"`
	TaskName               string    `json:"task_name" gorm:"size:128;not null"`
	TaskSequence           int       `json:"task_sequence" gorm:"not null"`
	Status                 string    `json:"status" gorm:"size:24;not null;default:pending"`
	AssignedOperator       string    `json:"assigned_operator" gorm:"size:64"`
	EstimatedDurationHours float64   `json:"estimated_duration_hours" gorm:"type:decimal(8,2)"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	// 关联
	Process      *ProductionProcess      `json:"process,omitempty" gorm:"foreignKey:ProductionProcessID"`
	Requirements []SubtaskBomRequirement `json:"requirements,omitempty" gorm:"foreignKey:SubtaskID"`
}

func (ProcessSubtask) TableName() string {
	return "process_subtasks"
}

// SubtaskBomRequirement 子任务消耗的BOM零件需求
type SubtaskBomRequirement struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	SubtaskID         string    `json:"subtask_id" gorm:"size:32;not null;index"`
	BOMItemID         string    `json:"bom_item_id" gorm:"size:32;not null"`
	RequiredQuantity  float64   `json:"required_quantity" gorm:"type:decimal(15,4);not null"`
	Unit              string    `json:"unit" gorm:"size:16;not null"`
	RequirementStatus string    `json:"requirement_status" gorm:"size:24;not null;default:pending"`
	CreatedAt         time.Time `json:"created_at"`

	BOMItem *BOMItem `json:"bom_item,omitempty" gorm:"foreignKey:BOMItemID"`
}

func (SubtaskBomRequirement) TableName() string {
	return "subtask_bom_requirements"
}
