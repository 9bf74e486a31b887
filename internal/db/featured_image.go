package db

import "github.com/sitepress/internal/content"

// FeaturedImage 是挂在文章下的配图，Src 与 Filename 为空时由资源存储补齐。
type FeaturedImage struct {
	ID                  uint `gorm:"primaryKey"`
	content.TimeStamped `gorm:"embedded"`
	BlogPostID          *uint  `gorm:"index"`
	AssetKey            string `gorm:"size:300"`
	Description         string `gorm:"size:100"`
	IsVisible           bool
	IsFeaturedImage     bool
	Src                 string `gorm:"size:2000;not null"`
	Filename            string `gorm:"size:300;not null"`
	Width               int
	Height              int
}
