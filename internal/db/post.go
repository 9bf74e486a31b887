package db

import (
	"github.com/sitepress/internal/content"
)

// ModelBlogPost 是共享编辑白名单中博客文章的标识。
const ModelBlogPost = "blog.blogpost"

// BlogPost 定义了博客文章模型
type BlogPost struct {
	ID                  uint `gorm:"primaryKey"`
	content.Displayable `gorm:"embedded"`
	content.Ownable     `gorm:"embedded"`
	content.RichText    `gorm:"embedded"`
	User                User
	Categories          []BlogCategory `gorm:"many2many:blog_post_categories;"`
	Keywords            []Keyword      `gorm:"many2many:blog_post_keywords;"`
	RelatedPosts        []BlogPost     `gorm:"many2many:blog_post_related;joinForeignKey:BlogPostID;joinReferences:RelatedPostID"`
	AllowComments       bool
	FeaturedImages      []FeaturedImage `gorm:"foreignKey:BlogPostID"`
}

// URL 返回文章在前台的访问路径。
func (p BlogPost) URL() string {
	return "/post/" + p.Slug
}

// CoverImage 返回第一张标记为封面且可见的图片。
func (p BlogPost) CoverImage() *FeaturedImage {
	for i := range p.FeaturedImages {
		img := &p.FeaturedImages[i]
		if img.IsVisible && img.IsFeaturedImage {
			return img
		}
	}
	return nil
}

// ModelBlogCategory 是分类的模型标识。
const ModelBlogCategory = "blog.blogcategory"

// BlogCategory 是用于组织文章的分类，ParentID 非空时表示子分类。
type BlogCategory struct {
	ID                  uint `gorm:"primaryKey"`
	content.Slugged     `gorm:"embedded"`
	content.TimeStamped `gorm:"embedded"`
	ParentID            *uint          `gorm:"index"`
	Parent              *BlogCategory  `json:",omitempty"`
	Children            []BlogCategory `gorm:"foreignKey:ParentID" json:",omitempty"`
	Visible             bool
	BlogPosts           []BlogPost `gorm:"many2many:blog_post_categories;" json:"-"`
}

// URL 返回分类页路径，子分类使用独立的路由。
func (c BlogCategory) URL() string {
	if c.ParentID != nil {
		return "/sub-category/" + c.Slug
	}
	return "/category/" + c.Slug
}
