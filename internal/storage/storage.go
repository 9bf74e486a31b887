package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// ErrInvalidKey 表示对象 key 为空或试图跳出存储根目录。
var ErrInvalidKey = errors.New("invalid object key")

// Backend 定义资源存储后端。URL 与 Filename 用于为配图补齐展示字段。
type Backend interface {
	// Upload 写入对象内容
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// Delete 删除对象，不存在时不报错
	Delete(ctx context.Context, key string) error
	// URL 返回对象的公开访问地址
	URL(key string) string
	// Filename 返回对象的文件名
	Filename(key string) string
}

// Config 汇总存储后端的配置，Driver 为空时使用本地磁盘。
type Config struct {
	Driver string
	Local  LocalConfig
	S3     S3Config
}

// New 按配置创建存储后端。
func New(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		return NewLocalBackend(cfg.Local)
	case DriverS3:
		return NewS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// NewKey 生成唯一的对象 key，格式为 日期-uuid.扩展名，保留原始扩展名。
func NewKey(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
}

// cleanKey 统一 key 的分隔符并拒绝路径穿越。
func cleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if trimmed == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + trimmed)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(trimmed, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func baseName(key string) string {
	return path.Base(strings.ReplaceAll(key, "\\", "/"))
}

func joinURL(prefix, key string) string {
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(key, "/")
}
