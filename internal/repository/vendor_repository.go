package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository 供应商及批次分配仓库
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// CreateVendor 创建供应商
func (r *VendorRepository) CreateVendor(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// FindVendorByID 根据ID查找供应商
func (r *VendorRepository) FindVendorByID(ctx context.Context, id string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// ListVendors 供应商列表
func (r *VendorRepository) ListVendors(ctx context.Context, page, pageSize int) ([]entity.Vendor, int64, error) {
	var vendors []entity.Vendor
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Vendor{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&vendors).Error
	return vendors, total, err
}

// CreateAssignment 创建供应商分配。(lot, bom_item, vendor) 重复时返回
// gorm.ErrDuplicatedKey（唯一索引兜底并发场景）。
func (r *VendorRepository) CreateAssignment(ctx context.Context, a *entity.LotVendorAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// BulkCreateAssignments 批量创建分配。历史行为：批量接口不因重复行失败，
// 重复的 (lot, bom_item, vendor) 由唯一索引去重跳过。
func (r *VendorRepository) BulkCreateAssignments(ctx context.Context, as []entity.LotVendorAssignment) error {
	if len(as) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&as).Error
}

// FindAssignmentByID 根据ID查找分配
func (r *VendorRepository) FindAssignmentByID(ctx context.Context, id string) (*entity.LotVendorAssignment, error) {
	var a entity.LotVendorAssignment
	err := r.db.WithContext(ctx).Preload("Vendor").Preload("BOMItem").
		Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindAssignmentsByLot 查询批次的全部分配
func (r *VendorRepository) FindAssignmentsByLot(ctx context.Context, lotID string) ([]entity.LotVendorAssignment, error) {
	var as []entity.LotVendorAssignment
	err := r.db.WithContext(ctx).Preload("Vendor").Preload("BOMItem").
		Where("production_lot_id = ?", lotID).
		Order("created_at ASC").
		Find(&as).Error
	return as, err
}

// UpdateAssignment 更新分配
func (r *VendorRepository) UpdateAssignment(ctx context.Context, a *entity.LotVendorAssignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

// DeleteAssignment 删除分配
func (r *VendorRepository) DeleteAssignment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.LotVendorAssignment{}).Error
}
