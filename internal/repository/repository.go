package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User       *UserRepository
	BOM        *BOMRepository
	Lot        *LotRepository
	Process    *ProcessRepository
	Vendor     *VendorRepository
	Material   *MaterialRepository
	Daily      *DailyRepository
	Remark     *RemarkRepository
	Inspection *InspectionRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		BOM:        NewBOMRepository(db),
		Lot:        NewLotRepository(db),
		Process:    NewProcessRepository(db),
		Vendor:     NewVendorRepository(db),
		Material:   NewMaterialRepository(db),
		Daily:      NewDailyRepository(db),
		Remark:     NewRemarkRepository(db),
		Inspection: NewInspectionRepository(db),
	}
}
