package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// InspectionRepository 质检仓库
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) Create(ctx context.Context, inspection *entity.QualityInspection) error {
	return r.db.WithContext(ctx).Create(inspection).Error
}

func (r *InspectionRepository) FindByID(ctx context.Context, id string) (*entity.QualityInspection, error) {
	var inspection entity.QualityInspection
	err := r.db.WithContext(ctx).Preload("NonConformances").Where("id = ?", id).First(&inspection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inspection, nil
}

// FindAll 查询质检列表
func (r *InspectionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.QualityInspection, int64, error) {
	var items []entity.QualityInspection
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.QualityInspection{})

	if lotID := filters["lot_id"]; lotID != "" {
		query = query.Where("production_lot_id = ?", lotID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if result := filters["result"]; result != "" {
		query = query.Where("result = ?", result)
	}
	if inspType := filters["inspection_type"]; inspType != "" {
		query = query.Where("inspection_type = ?", inspType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *InspectionRepository) Update(ctx context.Context, inspection *entity.QualityInspection) error {
	return r.db.WithContext(ctx).Save(inspection).Error
}

// Delete 删除质检单及不合格项
func (r *InspectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inspection_id = ?", id).Delete(&entity.NonConformance{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.QualityInspection{}).Error
	})
}

// GenerateCode 生成质检编码 QI-{year}-{4位}
func (r *InspectionRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("QI-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.QualityInspection{}).
		Select("COALESCE(MAX(inspection_code), '')").
		Where("inspection_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "QI-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// CreateNonConformance 创建不合格项
func (r *InspectionRepository) CreateNonConformance(ctx context.Context, nc *entity.NonConformance) error {
	return r.db.WithContext(ctx).Create(nc).Error
}

// FindNonConformancesByInspection 查询质检单的不合格项
func (r *InspectionRepository) FindNonConformancesByInspection(ctx context.Context, inspectionID string) ([]entity.NonConformance, error) {
	var ncs []entity.NonConformance
	err := r.db.WithContext(ctx).
		Where("inspection_id = ?", inspectionID).
		Order("created_at ASC").
		Find(&ncs).Error
	return ncs, err
}

// MetricsRow 质检指标聚合行
type MetricsRow struct {
	Total       int64 `json:"total"`
	Completed   int64 `json:"completed"`
	Passed      int64 `json:"passed"`
	Failed      int64 `json:"failed"`
	Conditional int64 `json:"conditional"`
}

// Metrics 按批次聚合质检指标；lotID为空时聚合全部
func (r *InspectionRepository) Metrics(ctx context.Context, lotID string) (*MetricsRow, error) {
	var row MetricsRow
	query := r.db.WithContext(ctx).Model(&entity.QualityInspection{})
	if lotID != "" {
		query = query.Where("production_lot_id = ?", lotID)
	}
	err := query.Select(
		"COUNT(*) AS total, " +
			"COUNT(CASE WHEN status IN ('completed','approved','rejected') THEN 1 END) AS completed, " +
			"COUNT(CASE WHEN result = 'passed' THEN 1 END) AS passed, " +
			"COUNT(CASE WHEN result = 'failed' THEN 1 END) AS failed, " +
			"COUNT(CASE WHEN result = 'conditional' THEN 1 END) AS conditional").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
