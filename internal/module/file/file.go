package file

import (
	"errors"
	"strings"
	"time"

	"social-event-system/internal/global/response"
	"social-event-system/internal/global/storage"

	"github.com/gin-gonic/gin"
)

const (
	maxUploadSize = 10 << 20
	presignExpiry = 15 * time.Minute
)

// kindDirs 上传用途对应的目录
var kindDirs = map[string]string{
	"cover":  "covers",
	"avatar": "avatars",
}

type presignReq struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required,max=128"`
	Kind        string `json:"kind" binding:"required,oneof=cover avatar"`
}

// Presign 生成直传对象存储的预签名地址
func Presign(c *gin.Context) {
	var req presignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if !isImage(req.ContentType) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("只支持图片"))
		return
	}

	out, err := store.PresignUpload(c.Request.Context(), kindDirs[req.Kind], req.Filename, req.ContentType, presignExpiry)
	if err != nil {
		log.Error("生成预签名地址失败", "error", err, "filename", req.Filename)
		response.Fail(c, storageError(err))
		return
	}
	response.Success(c, out)
}

// Upload 表单上传，字段 file 为文件，kind 为用途
func Upload(c *gin.Context) {
	kind := c.PostForm("kind")
	dir, ok := kindDirs[kind]
	if !ok {
		response.Fail(c, response.ErrInvalidRequest.WithTips("kind 只能是 cover 或 avatar"))
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err).WithTips("缺少文件"))
		return
	}
	if header.Size > maxUploadSize {
		response.Fail(c, response.ErrInvalidRequest.WithTips("文件不能超过10MB"))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !isImage(contentType) {
		response.Fail(c, response.ErrInvalidRequest.WithTips("只支持图片"))
		return
	}

	f, err := header.Open()
	if err != nil {
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	defer f.Close()

	out, err := store.Upload(c.Request.Context(), dir, header.Filename, contentType, f)
	if err != nil {
		log.Error("上传文件失败", "error", err, "filename", header.Filename)
		response.Fail(c, storageError(err))
		return
	}
	log.Info("文件上传成功", "key", out.Key, "size", header.Size)
	response.Success(c, out)
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func storageError(err error) error {
	if errors.Is(err, storage.ErrNotConfigured) {
		return response.ErrServerInternal.WithOrigin(err).WithTips("对象存储未配置")
	}
	return response.ErrServerInternal.WithOrigin(err)
}
