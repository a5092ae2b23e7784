package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// RemarkRepository 备注/问题仓库
type RemarkRepository struct {
	db *gorm.DB
}

func NewRemarkRepository(db *gorm.DB) *RemarkRepository {
	return &RemarkRepository{db: db}
}

func (r *RemarkRepository) Create(ctx context.Context, remark *entity.Remark) error {
	return r.db.WithContext(ctx).Create(remark).Error
}

func (r *RemarkRepository) FindByID(ctx context.Context, id string) (*entity.Remark, error) {
	var remark entity.Remark
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&remark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &remark, nil
}

// RemarkListParams 备注列表过滤条件
type RemarkListParams struct {
	LotID     string
	AppliesTo string
	Status    string
	Priority  string
	Page      int
	PageSize  int
}

func (r *RemarkRepository) FindAll(ctx context.Context, params RemarkListParams) ([]entity.Remark, int64, error) {
	var remarks []entity.Remark
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Remark{})
	if params.LotID != "" {
		query = query.Where("lot_id = ?", params.LotID)
	}
	if params.AppliesTo != "" {
		query = query.Where("applies_to = ?", params.AppliesTo)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
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
	err := query.Order("created_at DESC").Offset(offset).Limit(params.PageSize).Find(&remarks).Error
	return remarks, total, err
}

func (r *RemarkRepository) Update(ctx context.Context, remark *entity.Remark) error {
	return r.db.WithContext(ctx).Save(remark).Error
}

// Delete 删除备注及其评论
func (r *RemarkRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("remark_id = ?", id).Delete(&entity.RemarkComment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Remark{}).Error
	})
}

// CreateComment 创建评论
func (r *RemarkRepository) CreateComment(ctx context.Context, comment *entity.RemarkComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindCommentByID 根据ID查找评论
func (r *RemarkRepository) FindCommentByID(ctx context.Context, id string) (*entity.RemarkComment, error) {
	var comment entity.RemarkComment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// FindCommentsByRemark 查询备注的全部评论，按时间排列
func (r *RemarkRepository) FindCommentsByRemark(ctx context.Context, remarkID string) ([]entity.RemarkComment, error) {
	var comments []entity.RemarkComment
	err := r.db.WithContext(ctx).
		Where("remark_id = ?", remarkID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
