package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InspectionService 质检服务
type InspectionService struct {
	inspectionRepo *repository.InspectionRepository
	lotRepo        *repository.LotRepository
	owner          *OwnershipService
}

func NewInspectionService(inspectionRepo *repository.InspectionRepository, lotRepo *repository.LotRepository, owner *OwnershipService) *InspectionService {
	return &InspectionService{inspectionRepo: inspectionRepo, lotRepo: lotRepo, owner: owner}
}

// CreateInspectionRequest 创建质检单请求
type CreateInspectionRequest struct {
	ProductionLotID string  `json:"production_lot_id" binding:"required"`
	ProcessID       *string `json:"process_id"`
	InspectionType  string  `json:"inspection_type"`
	SampleQuantity  float64 `json:"sample_quantity"`
	Notes           string  `json:"notes"`
}

// Create 创建质检单，编码形如 QI-2026-0001，年内递增
func (s *InspectionService) Create(ctx context.Context, req *CreateInspectionRequest, userID string) (*entity.QualityInspection, error) {
	if err := s.owner.OwnsLot(ctx, req.ProductionLotID, userID); err != nil {
		return nil, err
	}
	code, err := s.inspectionRepo.GenerateCode(ctx)
	if err != nil {
		return nil, err
	}

	inspection := &entity.QualityInspection{
		ID:              uuid.New().String()[:32],
		InspectionCode:  code,
		ProductionLotID: req.ProductionLotID,
		ProcessID:       req.ProcessID,
		InspectionType:  req.InspectionType,
		Status:          entity.InspectionStatusDraft,
		SampleQuantity:  req.SampleQuantity,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}
	if inspection.InspectionType == "" {
		inspection.InspectionType = "in_process"
	}
	if err := s.inspectionRepo.Create(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// GetByID 质检单详情含不合格项
func (s *InspectionService) GetByID(ctx context.Context, id, userID string) (*entity.QualityInspection, error) {
	inspection, err := s.inspectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsLot(ctx, inspection.ProductionLotID, userID); err != nil {
		return nil, err
	}
	return inspection, nil
}

// List 质检单列表，按批次过滤时先做归属检查
func (s *InspectionService) List(ctx context.Context, page, pageSize int, filters map[string]string, userID string) ([]entity.QualityInspection, int64, error) {
	if lotID := filters["lot_id"]; lotID != "" {
		if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
			return nil, 0, err
		}
	}
	return s.inspectionRepo.FindAll(ctx, page, pageSize, filters)
}

// Start 开始检验：draft -> in_progress，记录检验人
func (s *InspectionService) Start(ctx context.Context, id, userID string) (*entity.QualityInspection, error) {
	inspection, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if inspection.Status != entity.InspectionStatusDraft {
		return nil, validationErrf("只有草稿状态的质检单可以开始检验，当前状态: %s", inspection.Status)
	}
	inspection.Status = entity.InspectionStatusInProgress
	inspection.InspectorID = userID
	if err := s.inspectionRepo.Update(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// ResultItem 单个检验项的结果
type ResultItem struct {
	Name     string  `json:"name"`
	Standard string  `json:"standard"`
	Measured string  `json:"measured"`
	Passed   bool    `json:"passed"`
	Quantity float64 `json:"quantity"`
}

// SubmitResultsRequest 提交检验结果请求
type SubmitResultsRequest struct {
	PassedQuantity float64      `json:"passed_quantity"`
	FailedQuantity float64      `json:"failed_quantity"`
	ResultItems    []ResultItem `json:"result_items"`
	Notes          string       `json:"notes"`
}

// SubmitResults 提交检验结果，质检单保持 in_progress，可多次覆盖提交
func (s *InspectionService) SubmitResults(ctx context.Context, id string, req *SubmitResultsRequest, userID string) (*entity.QualityInspection, error) {
	inspection, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if inspection.Status != entity.InspectionStatusInProgress {
		return nil, validationErrf("只有检验中的质检单可以提交结果，当前状态: %s", inspection.Status)
	}
	if req.PassedQuantity < 0 || req.FailedQuantity < 0 {
		return nil, validationErrf("数量不能为负数")
	}

	inspection.PassedQuantity = req.PassedQuantity
	inspection.FailedQuantity = req.FailedQuantity
	if req.Notes != "" {
		inspection.Notes = req.Notes
	}
	if len(req.ResultItems) > 0 {
		raw, err := json.Marshal(req.ResultItems)
		if err != nil {
			return nil, err
		}
		inspection.ResultItems = datatypes.JSON(raw)
	}

	if err := s.inspectionRepo.Update(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// CompleteRequest 完成检验请求
type CompleteRequest struct {
	Result string `json:"result" binding:"required"`
}

// Complete 完成检验：in_progress -> completed，必须给出结论
func (s *InspectionService) Complete(ctx context.Context, id string, req *CompleteRequest, userID string) (*entity.QualityInspection, error) {
	inspection, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if inspection.Status != entity.InspectionStatusInProgress {
		return nil, validationErrf("只有检验中的质检单可以完成，当前状态: %s", inspection.Status)
	}
	switch req.Result {
	case entity.InspectionResultPassed, entity.InspectionResultFailed, entity.InspectionResultConditional:
	default:
		return nil, validationErrf("未知的检验结论: %s", req.Result)
	}

	now := time.Now()
	inspection.Status = entity.InspectionStatusCompleted
	inspection.Result = req.Result
	inspection.InspectedAt = &now
	if err := s.inspectionRepo.Update(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// Approve 审批通过：completed -> approved
func (s *InspectionService) Approve(ctx context.Context, id, userID string) (*entity.QualityInspection, error) {
	return s.review(ctx, id, userID, entity.InspectionStatusApproved)
}

// Reject 审批驳回：completed -> rejected
func (s *InspectionService) Reject(ctx context.Context, id, userID string) (*entity.QualityInspection, error) {
	return s.review(ctx, id, userID, entity.InspectionStatusRejected)
}

func (s *InspectionService) review(ctx context.Context, id, userID, target string) (*entity.QualityInspection, error) {
	inspection, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if inspection.Status != entity.InspectionStatusCompleted {
		return nil, validationErrf("只有已完成的质检单可以审批，当前状态: %s", inspection.Status)
	}
	now := time.Now()
	inspection.Status = target
	inspection.ApprovedBy = userID
	inspection.ApprovedAt = &now
	if err := s.inspectionRepo.Update(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// Delete 删除质检单，仅草稿可删
func (s *InspectionService) Delete(ctx context.Context, id, userID string) error {
	inspection, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if inspection.Status != entity.InspectionStatusDraft {
		return validationErrf("只有草稿状态的质检单可以删除，当前状态: %s", inspection.Status)
	}
	return s.inspectionRepo.Delete(ctx, id)
}

// CreateNonConformanceRequest 创建不合格项请求
type CreateNonConformanceRequest struct {
	Description string `json:"description" binding:"required"`
	Severity    string `json:"severity"`
	Disposition string `json:"disposition"`
}

// CreateNonConformance 给质检单登记不合格项
func (s *InspectionService) CreateNonConformance(ctx context.Context, inspectionID string, req *CreateNonConformanceRequest, userID string) (*entity.NonConformance, error) {
	if _, err := s.GetByID(ctx, inspectionID, userID); err != nil {
		return nil, err
	}

	nc := &entity.NonConformance{
		ID:           uuid.New().String()[:32],
		InspectionID: inspectionID,
		Description:  req.Description,
		Severity:     req.Severity,
		Disposition:  req.Disposition,
		Status:       "OPEN",
		CreatedBy:    userID,
	}
	if nc.Severity == "" {
		nc.Severity = "MEDIUM"
	}
	if err := s.inspectionRepo.CreateNonConformance(ctx, nc); err != nil {
		return nil, err
	}
	return nc, nil
}

// ListNonConformances 质检单的不合格项
func (s *InspectionService) ListNonConformances(ctx context.Context, inspectionID, userID string) ([]entity.NonConformance, error) {
	if _, err := s.GetByID(ctx, inspectionID, userID); err != nil {
		return nil, err
	}
	return s.inspectionRepo.FindNonConformancesByInspection(ctx, inspectionID)
}

// InspectionMetrics 质检指标汇总
type InspectionMetrics struct {
	Total       int64   `json:"total"`
	Completed   int64   `json:"completed"`
	Passed      int64   `json:"passed"`
	Failed      int64   `json:"failed"`
	Conditional int64   `json:"conditional"`
	PassRate    float64 `json:"pass_rate"`
}

// Metrics 质检指标，通过率 = passed / (passed+failed+conditional)
func (s *InspectionService) Metrics(ctx context.Context, lotID, userID string) (*InspectionMetrics, error) {
	if lotID != "" {
		if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
			return nil, err
		}
	}
	row, err := s.inspectionRepo.Metrics(ctx, lotID)
	if err != nil {
		return nil, err
	}
	metrics := &InspectionMetrics{
		Total:       row.Total,
		Completed:   row.Completed,
		Passed:      row.Passed,
		Failed:      row.Failed,
		Conditional: row.Conditional,
	}
	concluded := row.Passed + row.Failed + row.Conditional
	if concluded > 0 {
		metrics.PassRate = float64(row.Passed) / float64(concluded) * 100
	}
	return metrics, nil
}
