package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalConfig 本地磁盘存储配置
type LocalConfig struct {
	// BaseDir 是文件写入的根目录
	BaseDir string
	// URLPrefix 是静态文件对外暴露的路径前缀，如 /static/uploads
	URLPrefix string
}

// LocalBackend 将对象保存在本地磁盘。
type LocalBackend struct {
	baseDir   string
	urlPrefix string
}

// NewLocalBackend 创建本地存储后端并确保根目录存在。
func NewLocalBackend(cfg LocalConfig) (*LocalBackend, error) {
	if cfg.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = "/static/uploads"
	}
	return &LocalBackend{baseDir: cfg.BaseDir, urlPrefix: prefix}, nil
}

func (b *LocalBackend) Upload(ctx context.Context, key string, reader io.Reader, _ string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	target := filepath.Join(b.baseDir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(target)
		return fmt.Errorf("write object: %w", err)
	}
	return file.Close()
}

func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(b.baseDir, filepath.FromSlash(cleaned))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (b *LocalBackend) URL(key string) string {
	return joinURL(b.urlPrefix, key)
}

func (b *LocalBackend) Filename(key string) string {
	return baseName(key)
}
