package entity

import (
	"time"
)

// RemarkScope 备注挂靠对象
const (
	RemarkScopeLot     = "LOT"
	RemarkScopeProcess = "PROCESS"
	RemarkScopeSubtask = "SUBTASK"
	RemarkScopeBOMPart = "BOM_PART"
)

// RemarkStatus 备注/问题状态
const (
	RemarkStatusOpen       = "OPEN"
	RemarkStatusInProgress = "IN_PROGRESS"
	RemarkStatusResolved   = "RESOLVED"
	RemarkStatusClosed     = "CLOSED"
)

// Remark 备注/问题单。applies_to 决定哪些关联id必填，
// 与当前范围无关的id在落库前一律清空。
type Remark struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	LotID        string     `json:"lot_id" gorm:"size:32;not null;index"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	Content      string     `json:"content" gorm:"type:text"`
	RemarkType   string     `json:"remark_type" gorm:"size:32;not null;default:GENERAL"`
	Priority     string     `json:"priority" gorm:"size:16;not null;default:MEDIUM"`
	Status       string     `json:"status" gorm:"size:16;not null;default:OPEN"`
	AppliesTo    string     `json:"applies_to" gorm:"size:16;not null"`
	ProcessID    *string    `json:"process_id" gorm:"size:32"`
	SubtaskID    *string    `json:"subtask_id" gorm:"size:32"`
	BOMPartID    *string    `json:"bom_part_id" gorm:"size:32"`
	CreatedBy    string     `json:"created_by" gorm:"size:32;not null"`
	AssignedTo   string     `json:"assigned_to" gorm:"size:32"`
	ResolvedDate *time.Time `json:"resolved_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Comments []RemarkComment `json:"comments,omitempty" gorm:"foreignKey:RemarkID"`
}

func (Remark) TableName() string {
	return "remarks_and_issues"
}

// RemarkComment 备注的讨论评论，parent_comment_id 构成线程
type RemarkComment struct {
	ID              string    `json:"id" gorm:"primaryKey;size:32"`
	RemarkID        string    `json:"remark_id" gorm:"size:32;not null;index"`
	ParentCommentID *string   `json:"parent_comment_id" gorm:"size:32"`
	ThreadLevel     int       `json:"thread_level" gorm:"not null;default:0"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	CreatedBy       string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (RemarkComment) TableName() string {
	return "remark_comments"
}
