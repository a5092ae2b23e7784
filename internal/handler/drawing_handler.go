package handler

import (
	"io"
	"path/filepath"

	"github.com/abushana-oss/mithran-mes/internal/service"
	"github.com/gin-gonic/gin"
)

// DrawingHandler BOM行项图纸处理器
type DrawingHandler struct {
	svc *service.DrawingService
}

// NewDrawingHandler 创建图纸处理器
func NewDrawingHandler(svc *service.DrawingService) *DrawingHandler {
	return &DrawingHandler{svc: svc}
}

// Upload 上传行项图纸
// POST /api/v1/bom-items/:id/drawings/:kind
func (h *DrawingHandler) Upload(c *gin.Context) {
	// 获取文件
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "File is required: "+err.Error())
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := h.svc.Upload(c.Request.Context(), c.Param("id"), c.Param("kind"),
		header.Filename, contentType, file, header.Size, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, item)
}

// Download 下载行项图纸
// GET /api/v1/bom-items/:id/drawings/:kind
func (h *DrawingHandler) Download(c *gin.Context) {
	kind := c.Param("kind")
	reader, item, err := h.svc.Download(c.Request.Context(), c.Param("id"), kind, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer reader.Close()

	objectPath := item.File2DPath
	if kind == service.DrawingKind3D {
		objectPath = item.File3DPath
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(objectPath))
	c.Header("Content-Type", "application/octet-stream")

	io.Copy(c.Writer, reader)
}
