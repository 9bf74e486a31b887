package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/storage"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

var (
	ErrImageNotFound = errors.New("featured image not found")
	// ErrImageUnsupported 表示上传内容无法识别为图片。
	ErrImageUnsupported = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image exceeds upload limit")
)

// MaxImageUploadBytes 限制单张配图的大小。
const MaxImageUploadBytes = 10 << 20

// FeaturedImageService 管理文章配图及其在资源存储中的对象。
type FeaturedImageService struct {
	db      *gorm.DB
	backend storage.Backend
	clock   Clock
}

// FeaturedImageInput 为配图的可编辑字段。
type FeaturedImageInput struct {
	BlogPostID      *uint
	AssetKey        string
	Description     string
	IsVisible       *bool
	IsFeaturedImage *bool
	Src             string
	Filename        string
	Width           int
	Height          int
}

// UploadedAsset 描述写入存储后的对象。
type UploadedAsset struct {
	Key         string
	URL         string
	Filename    string
	ContentType string
	Width       int
	Height      int
}

// NewFeaturedImageService 构造 FeaturedImageService。
func NewFeaturedImageService(gdb *gorm.DB, backend storage.Backend) *FeaturedImageService {
	return &FeaturedImageService{db: gdb, backend: backend}
}

// Upload 读取图片尺寸后写入资源存储。
func (s *FeaturedImageService) Upload(ctx context.Context, filename, contentType string, reader io.Reader) (*UploadedAsset, error) {
	data, err := io.ReadAll(io.LimitReader(reader, MaxImageUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageUploadBytes {
		return nil, ErrImageTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrImageUnsupported
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/" + format
	}

	key := storage.NewKey(filename, s.clock.now())
	if err := s.backend.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	return &UploadedAsset{
		Key:         key,
		URL:         s.backend.URL(key),
		Filename:    s.backend.Filename(key),
		ContentType: contentType,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// ListForPost 返回文章下的全部配图。
func (s *FeaturedImageService) ListForPost(postID uint) ([]db.FeaturedImage, error) {
	var images []db.FeaturedImage
	if err := s.db.Where("blog_post_id = ?", postID).Order("id asc").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Get 按 ID 读取配图。
func (s *FeaturedImageService) Get(id uint) (*db.FeaturedImage, error) {
	var img db.FeaturedImage
	if err := s.db.First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

// Attach 为文章新增配图。
func (s *FeaturedImageService) Attach(postID uint, input FeaturedImageInput) (*db.FeaturedImage, error) {
	img := &db.FeaturedImage{IsVisible: true}
	input.BlogPostID = &postID
	if err := s.save(img, input); err != nil {
		return nil, err
	}
	return img, nil
}

// Update 修改配图信息。
func (s *FeaturedImageService) Update(id uint, input FeaturedImageInput) (*db.FeaturedImage, error) {
	img, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.BlogPostID == nil {
		input.BlogPostID = img.BlogPostID
	}
	if strings.TrimSpace(input.AssetKey) == "" && strings.TrimSpace(input.Src) == "" {
		input.AssetKey, input.Src, input.Filename = img.AssetKey, img.Src, img.Filename
	}
	if err := s.save(img, input); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *FeaturedImageService) save(img *db.FeaturedImage, input FeaturedImageInput) error {
	if input.BlogPostID != nil {
		var count int64
		if err := s.db.Model(&db.BlogPost{}).Where("id = ?", *input.BlogPostID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
	}

	img.BlogPostID = input.BlogPostID
	img.AssetKey = strings.TrimSpace(input.AssetKey)
	img.Description = strings.TrimSpace(input.Description)
	img.IsVisible = boolOr(input.IsVisible, img.IsVisible)
	img.IsFeaturedImage = boolOr(input.IsFeaturedImage, img.IsFeaturedImage)
	img.Src = strings.TrimSpace(input.Src)
	img.Filename = strings.TrimSpace(input.Filename)
	if input.Width > 0 {
		img.Width = input.Width
	}
	if input.Height > 0 {
		img.Height = input.Height
	}

	// 未填写地址与文件名时由资源存储补齐
	if img.AssetKey != "" {
		if img.Src == "" {
			img.Src = s.backend.URL(img.AssetKey)
		}
		if img.Filename == "" {
			img.Filename = s.backend.Filename(img.AssetKey)
		}
	}
	if img.Src == "" {
		return &content.ValidationError{Field: "image", Message: "This field is required."}
	}
	if img.Filename == "" {
		img.Filename = path.Base(img.Src)
	}

	img.Touch(s.clock.now())
	return s.db.Save(img).Error
}

// Delete 删除配图记录，并尽力删除存储中的对象。
func (s *FeaturedImageService) Delete(ctx context.Context, id uint) error {
	img, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(img).Error; err != nil {
		return err
	}
	if img.AssetKey == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, img.AssetKey); err != nil {
		return fmt.Errorf("delete stored image: %w", err)
	}
	return nil
}
