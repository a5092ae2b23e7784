package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialRepository 批次物料跟踪与告警仓库
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// BatchCreate 批量初始化批次物料行。重复初始化由唯一索引去重跳过。
func (r *MaterialRepository) BatchCreate(ctx context.Context, materials []entity.ProductionLotMaterial) error {
	if len(materials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&materials).Error
}

// FindByID 根据ID查找物料行
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.ProductionLotMaterial, error) {
	var m entity.ProductionLotMaterial
	err := r.db.WithContext(ctx).Preload("BOMItem").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// FindByLot 查询批次的全部物料行
func (r *MaterialRepository) FindByLot(ctx context.Context, lotID string) ([]entity.ProductionLotMaterial, error) {
	var materials []entity.ProductionLotMaterial
	err := r.db.WithContext(ctx).Preload("BOMItem").
		Where("production_lot_id = ?", lotID).
		Order("created_at ASC").
		Find(&materials).Error
	return materials, err
}

// Update 更新物料行
func (r *MaterialRepository) Update(ctx context.Context, m *entity.ProductionLotMaterial) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// CreateAlert 创建告警
func (r *MaterialRepository) CreateAlert(ctx context.Context, alert *entity.ProductionAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// FindAlertByID 根据ID查找告警
func (r *MaterialRepository) FindAlertByID(ctx context.Context, id string) (*entity.ProductionAlert, error) {
	var alert entity.ProductionAlert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindAlertsByLot 查询批次的持久化告警
func (r *MaterialRepository) FindAlertsByLot(ctx context.Context, lotID, status string) ([]entity.ProductionAlert, error) {
	var alerts []entity.ProductionAlert
	query := r.db.WithContext(ctx).Where("production_lot_id = ?", lotID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// UpdateAlert 更新告警
func (r *MaterialRepository) UpdateAlert(ctx context.Context, alert *entity.ProductionAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}
