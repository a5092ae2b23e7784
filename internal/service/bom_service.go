package service

import (
	"context"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMService BOM服务
type BOMService struct {
	bomRepo *repository.BOMRepository
	owner   *OwnershipService
}

func NewBOMService(bomRepo *repository.BOMRepository, owner *OwnershipService) *BOMService {
	return &BOMService{bomRepo: bomRepo, owner: owner}
}

// CreateBOMItemRequest 创建BOM行项请求
type CreateBOMItemRequest struct {
	ParentItemID  *string `json:"parent_item_id"`
	Name          string  `json:"name" binding:"required"`
	PartNumber    string  `json:"part_number"`
	Description   string  `json:"description"`
	ItemType      string  `json:"item_type" binding:"required"`
	Quantity      float64 `json:"quantity" binding:"required,gt=0"`
	Unit          string  `json:"unit"`
	MaterialGrade string  `json:"material_grade"`
	UnitCost      float64 `json:"unit_cost"`
	MakeBuy       string  `json:"make_buy"`
}

// CreateBOMRequest 创建BOM请求
type CreateBOMRequest struct {
	Name    string `json:"name" binding:"required"`
	Version string `json:"version"`
}

// Create 创建BOM
func (s *BOMService) Create(ctx context.Context, req *CreateBOMRequest, userID string) (*entity.BOM, error) {
	bom := &entity.BOM{
		ID:      uuid.New().String()[:32],
		Name:    req.Name,
		Version: req.Version,
		UserID:  userID,
	}
	if bom.Version == "" {
		bom.Version = "v1"
	}
	if err := s.bomRepo.Create(ctx, bom); err != nil {
		return nil, err
	}
	return bom, nil
}

// AddItem 为BOM添加行项。父项类型层级必须严格高于子项
// （assembly → sub_assembly → child_part）。
func (s *BOMService) AddItem(ctx context.Context, bomID string, req *CreateBOMItemRequest, userID string) (*entity.BOMItem, error) {
	if err := s.owner.OwnsBOM(ctx, bomID, userID); err != nil {
		return nil, err
	}
	if !entity.ValidItemType(req.ItemType) {
		return nil, validationErrf("非法的物料项类型: %s", req.ItemType)
	}
	if req.ParentItemID != nil {
		parent, err := s.bomRepo.FindItemByID(ctx, *req.ParentItemID)
		if err != nil {
			return nil, err
		}
		if parent.BOMID != bomID {
			return nil, validationErrf("父项不属于该BOM")
		}
		if !entity.ValidItemParent(parent.ItemType, req.ItemType) {
			return nil, validationErrf("%s 下不允许挂 %s", parent.ItemType, req.ItemType)
		}
	}

	item := &entity.BOMItem{
		ID:            uuid.New().String()[:32],
		BOMID:         bomID,
		ParentItemID:  req.ParentItemID,
		Name:          req.Name,
		PartNumber:    req.PartNumber,
		Description:   req.Description,
		ItemType:      req.ItemType,
		Quantity:      req.Quantity,
		Unit:          req.Unit,
		MaterialGrade: req.MaterialGrade,
		UnitCost:      req.UnitCost,
		MakeBuy:       req.MakeBuy,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.MakeBuy == "" {
		item.MakeBuy = entity.MakeBuyMake
	}
	if err := s.bomRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetByID 获取BOM详情（含行项）
func (s *BOMService) GetByID(ctx context.Context, id, userID string) (*entity.BOM, error) {
	if err := s.owner.OwnsBOM(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.bomRepo.FindByIDWithItems(ctx, id)
}

// List 用户拥有的BOM列表
func (s *BOMService) List(ctx context.Context, userID string, page, pageSize int) ([]entity.BOM, int64, error) {
	return s.bomRepo.FindByUser(ctx, userID, page, pageSize)
}

// Delete 删除BOM
func (s *BOMService) Delete(ctx context.Context, id, userID string) error {
	if err := s.owner.OwnsBOM(ctx, id, userID); err != nil {
		return err
	}
	return s.bomRepo.Delete(ctx, id)
}

// BOMTreeNode BOM树节点
type BOMTreeNode struct {
	entity.BOMItem
	Children []*BOMTreeNode `json:"children"`
}

// GetTree 把扁平行项组装成树。parent_item_id 为空的是根节点。
func (s *BOMService) GetTree(ctx context.Context, bomID, userID string) ([]*BOMTreeNode, error) {
	if err := s.owner.OwnsBOM(ctx, bomID, userID); err != nil {
		return nil, err
	}
	items, err := s.bomRepo.FindItemsByBOM(ctx, bomID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*BOMTreeNode, len(items))
	for i := range items {
		item := items[i]
		item.Children = nil
		nodes[item.ID] = &BOMTreeNode{BOMItem: item, Children: []*BOMTreeNode{}}
	}

	var roots []*BOMTreeNode
	for i := range items {
		node := nodes[items[i].ID]
		if items[i].ParentItemID != nil {
			if parent, ok := nodes[*items[i].ParentItemID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// TotalCost 计算BOM单套成本：sum(quantity × unit_cost)
func (s *BOMService) TotalCost(ctx context.Context, bomID, userID string) (float64, error) {
	if err := s.owner.OwnsBOM(ctx, bomID, userID); err != nil {
		return 0, err
	}
	items, err := s.bomRepo.FindItemsByBOM(ctx, bomID)
	if err != nil {
		return 0, err
	}
	total := SumItemCosts(items)
	f, _ := total.Float64()
	return f, nil
}

// SumItemCosts 行项成本合计，使用decimal避免浮点累计误差
func SumItemCosts(items []entity.BOMItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		cost := decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitCost))
		total = total.Add(cost)
	}
	return total
}
