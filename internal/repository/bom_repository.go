package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// BOMRepository BOM仓库
type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

// Create 创建BOM（含行项，单事务）
func (r *BOMRepository) Create(ctx context.Context, bom *entity.BOM) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

// FindByID 根据ID查找BOM
func (r *BOMRepository) FindByID(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindByIDWithItems 查找BOM及其全部行项
func (r *BOMRepository) FindByIDWithItems(ctx context.Context, id string) (*entity.BOM, error) {
	var bom entity.BOM
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&bom).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bom, nil
}

// FindByUser 查询用户拥有的BOM列表
func (r *BOMRepository) FindByUser(ctx context.Context, userID string, page, pageSize int) ([]entity.BOM, int64, error) {
	var boms []entity.BOM
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BOM{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&boms).Error
	return boms, total, err
}

// Delete 删除BOM及行项
func (r *BOMRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bom_id = ?", id).Delete(&entity.BOMItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.BOM{}).Error
	})
}

// CreateItem 创建BOM行项
func (r *BOMRepository) CreateItem(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindItemByID 根据ID查找BOM行项
func (r *BOMRepository) FindItemByID(ctx context.Context, id string) (*entity.BOMItem, error) {
	var item entity.BOMItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindItemsByBOM 查询BOM的全部行项
func (r *BOMRepository) FindItemsByBOM(ctx context.Context, bomID string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.WithContext(ctx).Where("bom_id = ?", bomID).Order("created_at ASC").Find(&items).Error
	return items, err
}

// FindItemsByIDs 批量查询BOM行项
func (r *BOMRepository) FindItemsByIDs(ctx context.Context, ids []string) ([]entity.BOMItem, error) {
	var items []entity.BOMItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// UpdateItem 更新BOM行项
func (r *BOMRepository) UpdateItem(ctx context.Context, item *entity.BOMItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem 删除BOM行项
func (r *BOMRepository) DeleteItem(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.BOMItem{}).Error
}
