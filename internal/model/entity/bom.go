package entity

import (
	"time"
)

// BOMItemType 物料项类型
const (
	ItemTypeAssembly    = "assembly"
	ItemTypeSubAssembly = "sub_assembly"
	ItemTypeChildPart   = "child_part"
)

// MakeBuy 自制/外购
const (
	MakeBuyMake = "make"
	MakeBuyBuy  = "buy"
)

// BOM 物料清单头表
type BOM struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Version   string    `json:"version" gorm:"size:16;not null;default:v1"`
	UserID    string    `json:"user_id" gorm:"size:32;not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Owner *User     `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	Items []BOMItem `json:"items,omitempty" gorm:"foreignKey:BOMID"`
}

func (BOM) TableName() string {
	return "boms"
}

// BOMItem BOM行项，通过 parent_item_id 构成树
type BOMItem struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	BOMID         string    `json:"bom_id" gorm:"size:32;not null;index"`
	ParentItemID  *string   `json:"parent_item_id" gorm:"size:32;index"`
	Name          string    `json:"name" gorm:"size:128;not null"`
	PartNumber    string    `json:"part_number" gorm:"size:64"`
	Description   string    `json:"description" gorm:"type:text"`
	ItemType      string    `json:"item_type" gorm:"size:16;not null"`
	Quantity      float64   `json:"quantity" gorm:"type:decimal(15,4);not null"`
	Unit          string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	MaterialGrade string    `json:"material_grade" gorm:"size:64"`
	UnitCost      float64   `json:"unit_cost" gorm:"type:decimal(15,4)"`
	MakeBuy       string    `json:"make_buy" gorm:"size:8;not null;default:make"`
	File2DPath    string    `json:"file_2d_path" gorm:"size:512"`
	File3DPath    string    `json:"file_3d_path" gorm:"size:512"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联
	BOM      *BOM      `json:"bom,omitempty" gorm:"foreignKey:BOMID"`
	Children []BOMItem `json:"children,omitempty" gorm:"foreignKey:ParentItemID"`
}

func (BOMItem) TableName() string {
	return "bom_items"
}

// itemTypeRank 类型层级，数值越小层级越高
var itemTypeRank = map[string]int{
	ItemTypeAssembly:    0,
	ItemTypeSubAssembly: 1,
	ItemTypeChildPart:   2,
}

// ValidItemType 判断物料项类型是否合法
func ValidItemType(t string) bool {
	_, ok := itemTypeRank[t]
	return ok
}

// ValidItemParent 父项类型层级必须严格高于子项
func ValidItemParent(parentType, childType string) bool {
	p, ok1 := itemTypeRank[parentType]
	c, ok2 := itemTypeRank[childType]
	return ok1 && ok2 && p < c
}
