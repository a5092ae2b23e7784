package service

import (
	"errors"
	"fmt"

	"github.com/abushana-oss/mithran-mes/internal/config"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrValidation 业务校验失败（非法状态迁移、重复编号等）
	ErrValidation = errors.New("validation failed")
	// ErrForbidden 当前用户无权执行该操作
	ErrForbidden = errors.New("forbidden")
)

// validationErrf 构造带说明的校验错误
func validationErrf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Services 服务集合
type Services struct {
	Ownership  *OwnershipService
	BOM        *BOMService
	Lot        *LotService
	Process    *ProcessService
	Vendor     *VendorService
	Material   *MaterialService
	Daily      *DailyService
	Remark     *RemarkService
	Inspection *InspectionService
	Dashboard  *DashboardService
	Drawing    *DrawingService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// 没有对象存储时图纸上传不可用，其余功能照常
			minioClient = nil
		}
	}

	ownership := NewOwnershipService(repos)
	material := NewMaterialService(repos.Material, repos.Lot, repos.BOM, ownership)

	return &Services{
		Ownership:  ownership,
		BOM:        NewBOMService(repos.BOM, ownership),
		Lot:        NewLotService(repos.Lot, repos.BOM, repos.Process, ownership),
		Process:    NewProcessService(repos.Process, repos.Lot, repos.BOM, ownership),
		Vendor:     NewVendorService(repos.Vendor, repos.Lot, repos.BOM, ownership),
		Material:   material,
		Daily:      NewDailyService(repos.Daily, repos.Lot, ownership),
		Remark:     NewRemarkService(repos.Remark, repos.Lot, repos.Process, repos.BOM, ownership),
		Inspection: NewInspectionService(repos.Inspection, repos.Lot, ownership),
		Dashboard:  NewDashboardService(repos, material, ownership, rdb),
		Drawing:    NewDrawingService(repos.BOM, ownership, minioClient, cfg.MinIO.Bucket),
	}
}
