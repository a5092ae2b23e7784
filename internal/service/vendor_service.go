package service

import (
	"context"
	"errors"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorService 供应商分配服务
type VendorService struct {
	vendorRepo *repository.VendorRepository
	lotRepo    *repository.LotRepository
	bomRepo    *repository.BOMRepository
	owner      *OwnershipService
}

func NewVendorService(vendorRepo *repository.VendorRepository, lotRepo *repository.LotRepository, bomRepo *repository.BOMRepository, owner *OwnershipService) *VendorService {
	return &VendorService{
		vendorRepo: vendorRepo,
		lotRepo:    lotRepo,
		bomRepo:    bomRepo,
		owner:      owner,
	}
}

// CreateVendorRequest 创建供应商请求
type CreateVendorRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	Email         string `json:"email"`
}

// CreateVendor 创建供应商
func (s *VendorService) CreateVendor(ctx context.Context, req *CreateVendorRequest) (*entity.Vendor, error) {
	vendor := &entity.Vendor{
		ID:            uuid.New().String()[:32],
		Code:          req.Code,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
		Email:         req.Email,
		Status:        "active",
	}
	if err := s.vendorRepo.CreateVendor(ctx, vendor); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErrf("供应商编码已存在: %s", req.Code)
		}
		return nil, err
	}
	return vendor, nil
}

// ListVendors 供应商列表
func (s *VendorService) ListVendors(ctx context.Context, page, pageSize int) ([]entity.Vendor, int64, error) {
	return s.vendorRepo.ListVendors(ctx, page, pageSize)
}

// assignmentTotal 分配总价 = 需求数量 × 单价
func assignmentTotal(qty, unitCost float64) float64 {
	total, _ := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitCost)).Float64()
	return total
}

// CreateAssignmentRequest 创建供应商分配请求
type CreateAssignmentRequest struct {
	BOMItemID        string  `json:"bom_item_id" binding:"required"`
	VendorID         string  `json:"vendor_id" binding:"required"`
	RequiredQuantity float64 `json:"required_quantity" binding:"required,gt=0"`
	UnitCost         float64 `json:"unit_cost" binding:"required,gte=0"`
}

// CreateAssignment 创建供应商分配。同一 (批次, 行项, 供应商) 只允许一条，
// 重复由唯一索引拦截并转成校验错误。
func (s *VendorService) CreateAssignment(ctx context.Context, lotID string, req *CreateAssignmentRequest, userID string) (*entity.LotVendorAssignment, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	if _, err := s.bomRepo.FindItemByID(ctx, req.BOMItemID); err != nil {
		return nil, err
	}
	if _, err := s.vendorRepo.FindVendorByID(ctx, req.VendorID); err != nil {
		return nil, err
	}

	a := &entity.LotVendorAssignment{
		ID:               uuid.New().String()[:32],
		ProductionLotID:  lotID,
		BOMItemID:        req.BOMItemID,
		VendorID:         req.VendorID,
		RequiredQuantity: req.RequiredQuantity,
		UnitCost:         req.UnitCost,
		TotalCost:        assignmentTotal(req.RequiredQuantity, req.UnitCost),
		DeliveryStatus:   entity.DeliveryStatusPending,
		QualityStatus:    entity.QualityStatusPending,
	}
	if err := s.vendorRepo.CreateAssignment(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationErrf("该批次行项已分配给此供应商")
		}
		return nil, err
	}
	return a, nil
}

// BulkCreateAssignments 批量创建分配。与单条创建不同，批量接口不会
// 因重复行失败：重复的组合由唯一索引去重跳过。
func (s *VendorService) BulkCreateAssignments(ctx context.Context, lotID string, reqs []CreateAssignmentRequest, userID string) ([]entity.LotVendorAssignment, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}

	as := make([]entity.LotVendorAssignment, 0, len(reqs))
	for _, req := range reqs {
		if req.BOMItemID == "" || req.VendorID == "" {
			return nil, validationErrf("bom_item_id 和 vendor_id 不能为空")
		}
		if req.RequiredQuantity <= 0 {
			return nil, validationErrf("需求数量必须大于0")
		}
		as = append(as, entity.LotVendorAssignment{
			ID:               uuid.New().String()[:32],
			ProductionLotID:  lotID,
			BOMItemID:        req.BOMItemID,
			VendorID:         req.VendorID,
			RequiredQuantity: req.RequiredQuantity,
			UnitCost:         req.UnitCost,
			TotalCost:        assignmentTotal(req.RequiredQuantity, req.UnitCost),
			DeliveryStatus:   entity.DeliveryStatusPending,
			QualityStatus:    entity.QualityStatusPending,
		})
	}

	if err := s.vendorRepo.BulkCreateAssignments(ctx, as); err != nil {
		return nil, err
	}
	return as, nil
}

// ListAssignments 批次的全部分配
func (s *VendorService) ListAssignments(ctx context.Context, lotID, userID string) ([]entity.LotVendorAssignment, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	return s.vendorRepo.FindAssignmentsByLot(ctx, lotID)
}

// GetAssignment 获取分配详情
func (s *VendorService) GetAssignment(ctx context.Context, id, userID string) (*entity.LotVendorAssignment, error) {
	a, err := s.vendorRepo.FindAssignmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, a.ProductionLotID, userID); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAssignmentRequest 更新供应商分配请求
type UpdateAssignmentRequest struct {
	RequiredQuantity *float64 `json:"required_quantity"`
	UnitCost         *float64 `json:"unit_cost"`
	DeliveryStatus   *string  `json:"delivery_status"`
	QualityStatus    *string  `json:"quality_status"`
}

// UpdateAssignment 更新分配。任一价格因子变化都用双方的最新值
// 重算总价。
func (s *VendorService) UpdateAssignment(ctx context.Context, id string, req *UpdateAssignmentRequest, userID string) (*entity.LotVendorAssignment, error) {
	a, err := s.GetAssignment(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.RequiredQuantity != nil {
		if *req.RequiredQuantity <= 0 {
			return nil, validationErrf("需求数量必须大于0")
		}
		a.RequiredQuantity = *req.RequiredQuantity
	}
	if req.UnitCost != nil {
		if *req.UnitCost < 0 {
			return nil, validationErrf("单价不能为负")
		}
		a.UnitCost = *req.UnitCost
	}
	if req.RequiredQuantity != nil || req.UnitCost != nil {
		a.TotalCost = assignmentTotal(a.RequiredQuantity, a.UnitCost)
	}
	if req.DeliveryStatus != nil {
		a.DeliveryStatus = *req.DeliveryStatus
	}
	if req.QualityStatus != nil {
		a.QualityStatus = *req.QualityStatus
	}

	if err := s.vendorRepo.UpdateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAssignment 删除分配
func (s *VendorService) DeleteAssignment(ctx context.Context, id, userID string) error {
	if _, err := s.GetAssignment(ctx, id, userID); err != nil {
		return err
	}
	return s.vendorRepo.DeleteAssignment(ctx, id)
}
