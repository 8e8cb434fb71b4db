package file

import (
	"context"
	"io"
	"log/slog"
	"time"

	"social-event-system/internal/global/logger"
	"social-event-system/internal/global/storage"
)

// Store 对象存储，测试中替换
type Store interface {
	Upload(ctx context.Context, dir, filename, contentType string, body io.Reader) (*storage.UploadResult, error)
	PresignUpload(ctx context.Context, dir, filename, contentType string, expires time.Duration) (*storage.PresignedUpload, error)
}

var (
	log   *slog.Logger
	store Store
)

type ModuleFile struct{}

func (*ModuleFile) GetName() string {
	return "File"
}

// Init 未配置对象存储时仍注册路由，请求返回错误提示
func (*ModuleFile) Init() {
	log = logger.New("File")
	store = storage.Default
	if storage.Default == nil {
		log.Warn("对象存储未配置，文件上传不可用")
	}
}
