package entity

import (
	"time"
)

// Vendor 供应商
type Vendor struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	Code          string    `json:"code" gorm:"size:64;uniqueIndex"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	ContactPerson string    `json:"contact_person" gorm:"size:64"`
	ContactPhone  string    `json:"contact_phone" gorm:"size:32"`
	Email         string    `json:"email" gorm:"size:128"`
	Status        string    `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Vendor) TableName() string {
	return "vendors"
}

// 交付/质量状态
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusOrdered   = "ordered"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusDelayed   = "delayed"

	QualityStatusPending  = "pending"
	QualityStatusApproved = "approved"
	QualityStatusRejected = "rejected"
)

// LotVendorAssignment 批次供应商分配。(lot, bom_item, vendor) 组合唯一，
// 由数据库唯一索引保证，创建时的重复检查只用于给出友好错误。
type LotVendorAssignment struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	ProductionLotID  string    `json:"production_lot_id" gorm:"size:32;not null;uniqueIndex:uniq_lot_item_vendor;index"`
	BOMItemID        string    `json:"bom_item_id" gorm:"size:32;not null;uniqueIndex:uniq_lot_item_vendor"`
	VendorID         string    `json:"vendor_id" gorm:"size:32;not null;uniqueIndex:uniq_lot_item_vendor"`
	RequiredQuantity float64   `json:"required_quantity" gorm:"type:decimal(15,4);not null"`
	UnitCost         float64   `json:"unit_cost" gorm:"type:decimal(15,4);not null"`
	TotalCost        float64   `json:"total_cost" gorm:"type:decimal(15,4);not null"`
	DeliveryStatus   string    `json:"delivery_status" gorm:"size:24;not null;default:pending"`
	QualityStatus    string    `json:"quality_status" gorm:"size:24;not null;default:pending"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	Vendor  *Vendor  `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	BOMItem *BOMItem `json:"bom_item,omitempty" gorm:"foreignKey:BOMItemID"`
}

func (LotVendorAssignment) TableName() string {
	return "lot_vendor_assignments"
}
