package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// DailyRepository 每日生产记录仓库
type DailyRepository struct {
	db *gorm.DB
}

func NewDailyRepository(db *gorm.DB) *DailyRepository {
	return &DailyRepository{db: db}
}

func (r *DailyRepository) Create(ctx context.Context, e *entity.DailyProductionEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *DailyRepository) FindByID(ctx context.Context, id string) (*entity.DailyProductionEntry, error) {
	var e entity.DailyProductionEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *DailyRepository) FindByLot(ctx context.Context, lotID string) ([]entity.DailyProductionEntry, error) {
	var entries []entity.DailyProductionEntry
	err := r.db.WithContext(ctx).
		Where("production_lot_id = ?", lotID).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *DailyRepository) Update(ctx context.Context, e *entity.DailyProductionEntry) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *DailyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DailyProductionEntry{}).Error
}
