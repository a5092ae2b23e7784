package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/redis/go-redis/v9"
)

// 生产监控数据缓存30秒，看板轮询不打穿数据库
const monitoringCacheTTL = 30 * time.Second

// DashboardService 看板聚合服务
type DashboardService struct {
	repos    *repository.Repositories
	material *MaterialService
	owner    *OwnershipService
	rdb      *redis.Client
}

func NewDashboardService(repos *repository.Repositories, material *MaterialService, owner *OwnershipService, rdb *redis.Client) *DashboardService {
	return &DashboardService{repos: repos, material: material, owner: owner, rdb: rdb}
}

// IntegratedDashboard 单批次全景视图
type IntegratedDashboard struct {
	Lot               *entity.ProductionLot          `json:"lot"`
	Processes         []entity.ProductionProcess     `json:"processes"`
	OverallCompletion float64                        `json:"overall_completion"`
	Materials         []entity.ProductionLotMaterial `json:"materials"`
	ActiveAlerts      []entity.ProductionAlert       `json:"active_alerts"`
	VendorAssignments []entity.LotVendorAssignment   `json:"vendor_assignments"`
	DailyReport       *DailyReport                   `json:"daily_report"`
	OpenRemarks       int64                          `json:"open_remarks"`
	QualityMetrics    *InspectionMetrics             `json:"quality_metrics"`
}

// GetIntegratedDashboard 聚合单个批次的工序进度、物料、告警、
// 供应商分配、每日生产和质检指标。
func (s *DashboardService) GetIntegratedDashboard(ctx context.Context, lotID, userID string) (*IntegratedDashboard, error) {
	if err := s.owner.OwnsLot(ctx, lotID, userID); err != nil {
		return nil, err
	}
	lot, err := s.repos.Lot.FindByIDWithProcesses(ctx, lotID)
	if err != nil {
		return nil, err
	}

	dashboard := &IntegratedDashboard{
		Lot:       lot,
		Processes: lot.Processes,
	}
	if len(lot.Processes) > 0 {
		var sum float64
		for _, p := range lot.Processes {
			sum += p.CompletionPercentage
		}
		dashboard.OverallCompletion = sum / float64(len(lot.Processes))
	}

	if dashboard.Materials, err = s.repos.Material.FindByLot(ctx, lotID); err != nil {
		return nil, err
	}
	if dashboard.ActiveAlerts, err = s.material.ListAlerts(ctx, lotID, entity.AlertStatusActive, userID); err != nil {
		return nil, err
	}
	if dashboard.VendorAssignments, err = s.repos.Vendor.FindAssignmentsByLot(ctx, lotID); err != nil {
		return nil, err
	}

	entries, err := s.repos.Daily.FindByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	report := &DailyReport{ProductionLotID: lotID, Entries: entries}
	for _, e := range entries {
		report.TotalPlanned += e.PlannedQuantity
		report.TotalActual += e.ActualQuantity
		report.TotalRejected += e.RejectedQuantity
		report.TotalRework += e.ReworkQuantity
		report.TotalDowntime += e.DowntimeHours
	}
	report.OverallEfficiency = entity.Efficiency(report.TotalPlanned, report.TotalActual)
	dashboard.DailyReport = report

	_, openCount, err := s.repos.Remark.FindAll(ctx, repository.RemarkListParams{
		LotID:    lotID,
		Status:   entity.RemarkStatusOpen,
		Page:     1,
		PageSize: 1,
	})
	if err != nil {
		return nil, err
	}
	dashboard.OpenRemarks = openCount

	row, err := s.repos.Inspection.Metrics(ctx, lotID)
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
	if concluded := row.Passed + row.Failed + row.Conditional; concluded > 0 {
		metrics.PassRate = float64(row.Passed) / float64(concluded) * 100
	}
	dashboard.QualityMetrics = metrics

	return dashboard, nil
}

// MonitoringLot 监控视图中的单个批次
type MonitoringLot struct {
	Lot               entity.ProductionLot `json:"lot"`
	OverallCompletion float64              `json:"overall_completion"`
	ActiveAlertCount  int                  `json:"active_alert_count"`
}

// MonitoringData 当前用户全部在产批次的监控视图
type MonitoringData struct {
	TotalLots     int             `json:"total_lots"`
	StatusCounts  map[string]int  `json:"status_counts"`
	Lots          []MonitoringLot `json:"lots"`
	GeneratedAt   time.Time       `json:"generated_at"`
	ServedFromTTL bool            `json:"-"`
}

func monitoringCacheKey(userID string) string {
	return "mithran:monitoring:" + userID
}

// GetProductionMonitoring 全局生产监控，结果在redis中缓存30秒
func (s *DashboardService) GetProductionMonitoring(ctx context.Context, userID string) (*MonitoringData, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, monitoringCacheKey(userID)).Bytes(); err == nil {
			var data MonitoringData
			if json.Unmarshal(cached, &data) == nil {
				data.ServedFromTTL = true
				return &data, nil
			}
		}
	}

	lots, _, err := s.repos.Lot.FindByCreator(ctx, userID, repository.LotListParams{
		Page:     1,
		PageSize: 200,
	})
	if err != nil {
		return nil, err
	}

	data := &MonitoringData{
		TotalLots:    len(lots),
		StatusCounts: make(map[string]int),
		Lots:         make([]MonitoringLot, 0, len(lots)),
		GeneratedAt:  time.Now(),
	}
	for _, lot := range lots {
		data.StatusCounts[lot.Status]++

		processes, err := s.repos.Process.FindByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		var completion float64
		if len(processes) > 0 {
			var sum float64
			for _, p := range processes {
				sum += p.CompletionPercentage
			}
			completion = sum / float64(len(processes))
		}

		alerts, err := s.repos.Material.FindAlertsByLot(ctx, lot.ID, entity.AlertStatusActive)
		if err != nil {
			return nil, err
		}
		materials, err := s.repos.Material.FindByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		activeCount := len(alerts) + len(SynthesizeShortageAlerts(materials))

		data.Lots = append(data.Lots, MonitoringLot{
			Lot:               lot,
			OverallCompletion: completion,
			ActiveAlertCount:  activeCount,
		})
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(data); err == nil {
			s.rdb.Set(ctx, monitoringCacheKey(userID), raw, monitoringCacheTTL)
		}
	}
	return data, nil
}
