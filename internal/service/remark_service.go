package service

import (
	"context"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
)

// RemarkService 备注/问题单服务
type RemarkService struct {
	remarkRepo  *repository.RemarkRepository
	lotRepo     *repository.LotRepository
	processRepo *repository.ProcessRepository
	bomRepo     *repository.BOMRepository
	owner       *OwnershipService
}

func NewRemarkService(remarkRepo *repository.RemarkRepository, lotRepo *repository.LotRepository, processRepo *repository.ProcessRepository, bomRepo *repository.BOMRepository, owner *OwnershipService) *RemarkService {
	return &RemarkService{
		remarkRepo:  remarkRepo,
		lotRepo:     lotRepo,
		processRepo: processRepo,
		bomRepo:     bomRepo,
		owner:       owner,
	}
}

// CreateRemarkRequest 创建备注请求
type CreateRemarkRequest struct {
	LotID      string  `json:"lot_id" binding:"required"`
	Title      string  `json:"title" binding:"required"`
	Content    string  `json:"content"`
	RemarkType string  `json:"remark_type"`
	Priority   string  `json:"priority"`
	AppliesTo  string  `json:"applies_to" binding:"required"`
	ProcessID  *string `json:"process_id"`
	SubtaskID  *string `json:"subtask_id"`
	BOMPartID  *string `json:"bom_part_id"`
	AssignedTo string  `json:"assigned_to"`
}

// normalizeScope 按挂靠范围校验必填的关联id，并清空与范围无关的id。
// 关联对象必须真实存在并属于同一批次链。
func (s *RemarkService) normalizeScope(ctx context.Context, remark *entity.Remark) error {
	switch remark.AppliesTo {
	case entity.RemarkScopeLot:
		remark.ProcessID = nil
		remark.SubtaskID = nil
		remark.BOMPartID = nil
		return nil

	case entity.RemarkScopeProcess:
		if remark.ProcessID == nil || *remark.ProcessID == "" {
			return validationErrf("PROCESS 范围的备注必须关联工序")
		}
		remark.SubtaskID = nil
		remark.BOMPartID = nil
		return s.checkProcessInLot(ctx, *remark.ProcessID, remark.LotID)

	case entity.RemarkScopeSubtask:
		if remark.ProcessID == nil || *remark.ProcessID == "" {
			return validationErrf("SUBTASK 范围的备注必须关联工序")
		}
		if remark.SubtaskID == nil || *remark.SubtaskID == "" {
			return validationErrf("SUBTASK 范围的备注必须关联子任务")
		}
		remark.BOMPartID = nil
		if err := s.checkProcessInLot(ctx, *remark.ProcessID, remark.LotID); err != nil {
			return err
		}
		return s.checkSubtaskInProcess(ctx, *remark.SubtaskID, *remark.ProcessID)

	case entity.RemarkScopeBOMPart:
		if remark.ProcessID == nil || *remark.ProcessID == "" {
			return validationErrf("BOM_PART 范围的备注必须关联工序")
		}
		if remark.SubtaskID == nil || *remark.SubtaskID == "" {
			return validationErrf("BOM_PART 范围的备注必须关联子任务")
		}
		if remark.BOMPartID == nil || *remark.BOMPartID == "" {
			return validationErrf("BOM_PART 范围的备注必须关联BOM行项")
		}
		if err := s.checkProcessInLot(ctx, *remark.ProcessID, remark.LotID); err != nil {
			return err
		}
		if err := s.checkSubtaskInProcess(ctx, *remark.SubtaskID, *remark.ProcessID); err != nil {
			return err
		}
		if _, err := s.bomRepo.FindItemByID(ctx, *remark.BOMPartID); err != nil {
			return validationErrf("BOM行项不存在: %s", *remark.BOMPartID)
		}
		return nil

	default:
		return validationErrf("未知的备注范围: %s", remark.AppliesTo)
	}
}

func (s *RemarkService) checkProcessInLot(ctx context.Context, processID, lotID string) error {
	process, err := s.processRepo.FindByID(ctx, processID)
	if err != nil {
		return validationErrf("工序不存在: %s", processID)
	}
	if process.ProductionLotID != lotID {
		return validationErrf("工序 %s 不属于该批次", processID)
	}
	return nil
}

func (s *RemarkService) checkSubtaskInProcess(ctx context.Context, subtaskID, processID string) error {
	subtask, err := s.processRepo.FindSubtaskByID(ctx, subtaskID)
	if err != nil {
		return validationErrf("子任务不存在: %s", subtaskID)
	}
	if subtask.ProductionProcessID != processID {
		return validationErrf("子任务 %s 不属于该工序", subtaskID)
	}
	return nil
}

// Create 创建备注
func (s *RemarkService) Create(ctx context.Context, req *CreateRemarkRequest, userID string) (*entity.Remark, error) {
	if err := s.owner.OwnsLot(ctx, req.LotID, userID); err != nil {
		return nil, err
	}

	remark := &entity.Remark{
		ID:         uuid.New().String()[:32],
		LotID:      req.LotID,
		Title:      req.Title,
		Content:    req.Content,
		RemarkType: req.RemarkType,
		Priority:   req.Priority,
		Status:     entity.RemarkStatusOpen,
		AppliesTo:  req.AppliesTo,
		ProcessID:  req.ProcessID,
		SubtaskID:  req.SubtaskID,
		BOMPartID:  req.BOMPartID,
		CreatedBy:  userID,
		AssignedTo: req.AssignedTo,
	}
	if remark.RemarkType == "" {
		remark.RemarkType = "GENERAL"
	}
	if remark.Priority == "" {
		remark.Priority = "MEDIUM"
	}
	if err := s.normalizeScope(ctx, remark); err != nil {
		return nil, err
	}

	if err := s.remarkRepo.Create(ctx, remark); err != nil {
		return nil, err
	}
	return remark, nil
}

// GetByID 备注详情含评论
func (s *RemarkService) GetByID(ctx context.Context, id, userID string) (*entity.Remark, error) {
	remark, err := s.remarkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, remark.LotID, userID); err != nil {
		return nil, err
	}
	comments, err := s.remarkRepo.FindCommentsByRemark(ctx, id)
	if err != nil {
		return nil, err
	}
	remark.Comments = comments
	return remark, nil
}

// List 备注列表，按批次过滤时先做归属检查
func (s *RemarkService) List(ctx context.Context, params repository.RemarkListParams, userID string) ([]entity.Remark, int64, error) {
	if params.LotID != "" {
		if err := s.owner.OwnsLot(ctx, params.LotID, userID); err != nil {
			return nil, 0, err
		}
	}
	return s.remarkRepo.FindAll(ctx, params)
}

// UpdateRemarkRequest 更新备注请求
type UpdateRemarkRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	RemarkType *string `json:"remark_type"`
	Priority   *string `json:"priority"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assigned_to"`
}

// Update 仅创建人或被指派人可更新。状态进入 RESOLVED 时记录解决时间，
// 离开 RESOLVED 时清空。
func (s *RemarkService) Update(ctx context.Context, id string, req *UpdateRemarkRequest, userID string) (*entity.Remark, error) {
	remark, err := s.remarkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, remark.LotID, userID); err != nil {
		return nil, err
	}
	if remark.CreatedBy != userID && remark.AssignedTo != userID {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		remark.Title = *req.Title
	}
	if req.Content != nil {
		remark.Content = *req.Content
	}
	if req.RemarkType != nil {
		remark.RemarkType = *req.RemarkType
	}
	if req.Priority != nil {
		remark.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		remark.AssignedTo = *req.AssignedTo
	}
	if req.Status != nil && *req.Status != remark.Status {
		switch *req.Status {
		case entity.RemarkStatusOpen, entity.RemarkStatusInProgress,
			entity.RemarkStatusResolved, entity.RemarkStatusClosed:
		default:
			return nil, validationErrf("未知的备注状态: %s", *req.Status)
		}
		if *req.Status == entity.RemarkStatusResolved {
			now := time.Now()
			remark.ResolvedDate = &now
		} else {
			remark.ResolvedDate = nil
		}
		remark.Status = *req.Status
	}

	if err := s.remarkRepo.Update(ctx, remark); err != nil {
		return nil, err
	}
	return remark, nil
}

// Delete 仅创建人可删除备注
func (s *RemarkService) Delete(ctx context.Context, id, userID string) error {
	remark, err := s.remarkRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if remark.CreatedBy != userID {
		return ErrForbidden
	}
	return s.remarkRepo.Delete(ctx, id)
}

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Content         string  `json:"content" binding:"required"`
	ParentCommentID *string `json:"parent_comment_id"`
}

// CreateComment 在备注下创建评论，回复评论的线程层级为父评论+1
func (s *RemarkService) CreateComment(ctx context.Context, remarkID string, req *CreateCommentRequest, userID string) (*entity.RemarkComment, error) {
	remark, err := s.remarkRepo.FindByID(ctx, remarkID)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, remark.LotID, userID); err != nil {
		return nil, err
	}

	threadLevel := 0
	if req.ParentCommentID != nil && *req.ParentCommentID != "" {
		parent, err := s.remarkRepo.FindCommentByID(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, validationErrf("父评论不存在: %s", *req.ParentCommentID)
		}
		if parent.RemarkID != remarkID {
			return nil, validationErrf("父评论不属于该备注")
		}
		threadLevel = parent.ThreadLevel + 1
	}

	comment := &entity.RemarkComment{
		ID:              uuid.New().String()[:32],
		RemarkID:        remarkID,
		ParentCommentID: req.ParentCommentID,
		ThreadLevel:     threadLevel,
		Content:         req.Content,
		CreatedBy:       userID,
	}
	if err := s.remarkRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments 备注的评论列表
func (s *RemarkService) ListComments(ctx context.Context, remarkID, userID string) ([]entity.RemarkComment, error) {
	remark, err := s.remarkRepo.FindByID(ctx, remarkID)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, remark.LotID, userID); err != nil {
		return nil, err
	}
	return s.remarkRepo.FindCommentsByRemark(ctx, remarkID)
}
