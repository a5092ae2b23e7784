package service

import (
	"context"

	"github.com/abushana-oss/mithran-mes/internal/repository"
)

// OwnershipService 所有权校验。访问权每次请求沿外键链重新推导
// （subtask→process→lot→bom→user），不做跨请求缓存。
// 校验失败一律按"不存在"处理，不向调用方暴露资源是否存在。
type OwnershipService struct {
	repos *repository.Repositories
}

func NewOwnershipService(repos *repository.Repositories) *OwnershipService {
	return &OwnershipService{repos: repos}
}

// OwnsBOM 校验用户拥有该BOM
func (s *OwnershipService) OwnsBOM(ctx context.Context, bomID, userID string) error {
	bom, err := s.repos.BOM.FindByID(ctx, bomID)
	if err != nil {
		return err
	}
	if bom.UserID != userID {
		return repository.ErrNotFound
	}
	return nil
}

// OwnsLot 校验用户拥有该批次：批次创建人或其BOM的所有者
func (s *OwnershipService) OwnsLot(ctx context.Context, lotID, userID string) error {
	lot, err := s.repos.Lot.FindByID(ctx, lotID)
	if err != nil {
		return err
	}
	if lot.CreatedBy == userID {
		return nil
	}
	return s.OwnsBOM(ctx, lot.BOMID, userID)
}

// OwnsProcess 沿 process→lot 链校验
func (s *OwnershipService) OwnsProcess(ctx context.Context, processID, userID string) error {
	process, err := s.repos.Process.FindByID(ctx, processID)
	if err != nil {
		return err
	}
	return s.OwnsLot(ctx, process.ProductionLotID, userID)
}

// OwnsSubtask 沿 subtask→process→lot 链校验
func (s *OwnershipService) OwnsSubtask(ctx context.Context, subtaskID, userID string) error {
	subtask, err := s.repos.Process.FindSubtaskByID(ctx, subtaskID)
	if err != nil {
		return err
	}
	return s.OwnsProcess(ctx, subtask.ProductionProcessID, userID)
}

// OwnsBOMItem 沿 item→bom 链校验
func (s *OwnershipService) OwnsBOMItem(ctx context.Context, itemID, userID string) error {
	item, err := s.repos.BOM.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	return s.OwnsBOM(ctx, item.BOMID, userID)
}
