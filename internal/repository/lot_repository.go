package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// LotRepository 生产批次仓库
type LotRepository struct {
	db *gorm.DB
}

func NewLotRepository(db *gorm.DB) *LotRepository {
	return &LotRepository{db: db}
}

// Create 创建批次。lot_number 唯一性由数据库唯一索引保证，
// 冲突时返回 gorm.ErrDuplicatedKey。
func (r *LotRepository) Create(ctx context.Context, lot *entity.ProductionLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

// FindByID 根据ID查找批次
func (r *LotRepository) FindByID(ctx context.Context, id string) (*entity.ProductionLot, error) {
	var lot entity.ProductionLot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByIDWithProcesses 查找批次及其工序
func (r *LotRepository) FindByIDWithProcesses(ctx context.Context, id string) (*entity.ProductionLot, error) {
	var lot entity.ProductionLot
	err := r.db.WithContext(ctx).
		Preload("Processes", func(db *gorm.DB) *gorm.DB {
			return db.Order("process_sequence ASC")
		}).
		Where("id = ?", id).First(&lot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// LotListParams 批次列表过滤条件
type LotListParams struct {
	Status   string
	BOMID    string
	Priority string
	Page     int
	PageSize int
}

// FindByCreator 查询某用户创建的批次列表
func (r *LotRepository) FindByCreator(ctx context.Context, userID string, params LotListParams) ([]entity.ProductionLot, int64, error) {
	var lots []entity.ProductionLot
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ProductionLot{}).Where("created_by = ?", userID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.BOMID != "" {
		query = query.Where("bom_id = ?", params.BOMID)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(params.PageSize).Find(&lots).Error
	return lots, total, err
}

// Update 更新批次
func (r *LotRepository) Update(ctx context.Context, lot *entity.ProductionLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// Delete 删除批次及其从属数据
func (r *LotRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("production_lot_id = ?", id).Delete(&entity.ProductionLotItem{}).Error; err != nil {
			return err
		}
		var processIDs []string
		if err := tx.Model(&entity.ProductionProcess{}).
			Where("production_lot_id = ?", id).Pluck("id", &processIDs).Error; err != nil {
			return err
		}
		if len(processIDs) > 0 {
			var subtaskIDs []string
			if err := tx.Model(&entity.ProcessSubtask{}).
				Where("production_process_id IN ?", processIDs).Pluck("id", &subtaskIDs).Error; err != nil {
				return err
			}
			if len(subtaskIDs) > 0 {
				if err := tx.Where("subtask_id IN ?", subtaskIDs).Delete(&entity.SubtaskBomRequirement{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", subtaskIDs).Delete(&entity.ProcessSubtask{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", processIDs).Delete(&entity.ProductionProcess{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entity.ProductionLot{}).Error
	})
}

// CreateItems 批量保存批次选定行项
func (r *LotRepository) CreateItems(ctx context.Context, items []entity.ProductionLotItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindItems 查询批次选定行项
func (r *LotRepository) FindItems(ctx context.Context, lotID string) ([]entity.ProductionLotItem, error) {
	var items []entity.ProductionLotItem
	err := r.db.WithContext(ctx).Preload("BOMItem").
		Where("production_lot_id = ?", lotID).Find(&items).Error
	return items, err
}

// DB 返回底层db用于事务
func (r *LotRepository) DB() *gorm.DB {
	return r.db
}
