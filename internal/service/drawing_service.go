package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/abushana-oss/mithran-mes/internal/model/entity"
	"github.com/abushana-oss/mithran-mes/internal/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// 图纸类别
const (
	DrawingKind2D = "2d"
	DrawingKind3D = "3d"
)

// DrawingService BOM行项2D/3D图纸的对象存储服务
type DrawingService struct {
	bomRepo     *repository.BOMRepository
	owner       *OwnershipService
	minioClient *minio.Client
	bucketName  string
}

func NewDrawingService(bomRepo *repository.BOMRepository, owner *OwnershipService, minioClient *minio.Client, bucketName string) *DrawingService {
	return &DrawingService{
		bomRepo:     bomRepo,
		owner:       owner,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// Upload 上传图纸并把对象路径写回BOM行项
func (s *DrawingService) Upload(ctx context.Context, itemID, kind, fileName, contentType string, reader io.Reader, fileSize int64, userID string) (*entity.BOMItem, error) {
	if kind != DrawingKind2D && kind != DrawingKind3D {
		return nil, validationErrf("未知的图纸类别: %s", kind)
	}
	item, err := s.bomRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.owner.OwnsBOM(ctx, item.BOMID, userID); err != nil {
		return nil, err
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("storage not configured")
	}

	// 生成存储路径
	objectName := fmt.Sprintf("drawings/%s/%s/%s%s",
		kind, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))

	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("upload drawing: %w", err)
	}

	if kind == DrawingKind2D {
		item.File2DPath = objectName
	} else {
		item.File3DPath = objectName
	}
	if err := s.bomRepo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Download 下载图纸，返回对象流由调用方负责关闭
func (s *DrawingService) Download(ctx context.Context, itemID, kind, userID string) (io.ReadCloser, *entity.BOMItem, error) {
	item, err := s.bomRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.owner.OwnsBOM(ctx, item.BOMID, userID); err != nil {
		return nil, nil, err
	}

	var objectName string
	switch kind {
	case DrawingKind2D:
		objectName = item.File2DPath
	case DrawingKind3D:
		objectName = item.File3DPath
	default:
		return nil, nil, validationErrf("未知的图纸类别: %s", kind)
	}
	if objectName == "" {
		return nil, nil, repository.ErrNotFound
	}
	if s.minioClient == nil {
		return nil, item, fmt.Errorf("storage not configured")
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("get object: %w", err)
	}
	return object, item, nil
}
