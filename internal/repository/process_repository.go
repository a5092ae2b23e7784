package repository

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"gorm.io/gorm"
)

// ProcessRepository 工序/子任务仓库
type ProcessRepository struct {
	db *gorm.DB
}

func NewProcessRepository(db *gorm.DB) *ProcessRepository {
	return &ProcessRepository{db: db}
}

// Create 创建工序
func (r *ProcessRepository) Create(ctx context.Context, process *entity.ProductionProcess) error {
	return r.db.WithContext(ctx).Create(process).Error
}

// FindByID 根据ID查找工序
func (r *ProcessRepository) FindByID(ctx context.Context, id string) (*entity.ProductionProcess, error) {
	var process entity.ProductionProcess
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&process).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &process, nil
}

// FindByLot 查询批次全部工序，按序号排列
func (r *ProcessRepository) FindByLot(ctx context.Context, lotID string) ([]entity.ProductionProcess, error) {
	var processes []entity.ProductionProcess
	err := r.db.WithContext(ctx).
		Where("production_lot_id = ?", lotID).
		Order("process_sequence ASC").
		Find(&processes).Error
	return processes, err
}

// NextSequence 取批次内下一个工序序号（当前最大值+1）。
// 必须在传入的事务内调用，避免并发创建拿到同一序号。
func (r *ProcessRepository) NextSequence(tx *gorm.DB, lotID string) (int, error) {
	var maxSeq int
	err := tx.Model(&entity.ProductionProcess{}).
		Select("COALESCE(MAX(process_sequence), 0)").
		Where("production_lot_id = ?", lotID).
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

// Update 更新工序
func (r *ProcessRepository) Update(ctx context.Context, process *entity.ProductionProcess) error {
	return r.db.WithContext(ctx).Save(process).Error
}

// Delete 删除工序及其子任务
func (r *ProcessRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtaskIDs []string
		if err := tx.Model(&entity.ProcessSubtask{}).
			Where("production_process_id = ?", id).Pluck("id", &subtaskIDs).Error; err != nil {
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
		return tx.Where("id = ?", id).Delete(&entity.ProductionProcess{}).Error
	})
}

// CreateSubtaskWithRequirements 创建子任务及其BOM零件需求，单事务。
// 对应存储过程 create_subtask_with_bom_parts 的原子语义。
func (r *ProcessRepository) CreateSubtaskWithRequirements(ctx context.Context, subtask *entity.ProcessSubtask, reqs []entity.SubtaskBomRequirement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(subtask).Error; err != nil {
			return err
		}
		if len(reqs) > 0 {
			for i := range reqs {
				reqs[i].SubtaskID = subtask.ID
			}
			if err := tx.Create(&reqs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindSubtaskByID 根据ID查找子任务
func (r *ProcessRepository) FindSubtaskByID(ctx context.Context, id string) (*entity.ProcessSubtask, error) {
	var subtask entity.ProcessSubtask
	err := r.db.WithContext(ctx).Preload("Requirements").Where("id = ?", id).First(&subtask).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &subtask, nil
}

// FindSubtasksByProcess 查询工序的全部子任务
func (r *ProcessRepository) FindSubtasksByProcess(ctx context.Context, processID string) ([]entity.ProcessSubtask, error) {
	var subtasks []entity.ProcessSubtask
	err := r.db.WithContext(ctx).Preload("Requirements").
		Where("production_process_id = ?", processID).
		Order("task_sequence ASC").
		Find(&subtasks).Error
	return subtasks, err
}

// NextSubtaskSequence 取工序内下一个子任务序号
func (r *ProcessRepository) NextSubtaskSequence(ctx context.Context, processID string) (int, error) {
	var maxSeq int
	err := r.db.WithContext(ctx).Model(&entity.ProcessSubtask{}).
		Select("COALESCE(MAX(task_sequence), 0)").
		Where("production_process_id = ?", processID).
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq + 1, nil
}

// UpdateSubtask 更新子任务
func (r *ProcessRepository) UpdateSubtask(ctx context.Context, subtask *entity.ProcessSubtask) error {
	return r.db.WithContext(ctx).Save(subtask).Error
}

// DeleteSubtask 删除子任务及其需求
func (r *ProcessRepository) DeleteSubtask(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subtask_id = ?", id).Delete(&entity.SubtaskBomRequirement{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.ProcessSubtask{}).Error
	})
}

// DB 返回底层db用于事务
func (r *ProcessRepository) DB() *gorm.DB {
	return r.db
}
