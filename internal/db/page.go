package db

import "github.com/sitepress/internal/content"

const (
	// ModelPage 是页面基础类型的模型标识。
	ModelPage = "pages.page"

	ContentModelRichTextPage = "richtextpage"
	ContentModelLinkPage     = "linkpage"
)

// PageContentTypes 是页面下已注册的具体子类型。
var PageContentTypes = content.NewContentTypeRegistry("page",
	content.ContentType{Name: ContentModelRichTextPage, Label: "Rich text page"},
	content.ContentType{Name: ContentModelLinkPage, Label: "Link"},
)

// ConcretePage 由页面基础类型及其全部子类型实现。
type ConcretePage interface {
	BasePage() *Page
	ContentModelName() string
}

// Page 是页面的基础类型，子类型通过 PageID 一对一关联。
type Page struct {
	ID                   uint `gorm:"primaryKey"`
	content.Displayable  `gorm:"embedded"`
	content.ContentTyped `gorm:"embedded"`
	Keywords             []Keyword `gorm:"many2many:page_keywords;"`
	InMenus              bool
	SortOrder            int `gorm:"default:0"`
}

func (p *Page) BasePage() *Page { return p }

// ContentModelName 对基础类型返回 "page"。
func (p *Page) ContentModelName() string {
	if p.ContentModel == "" {
		return PageContentTypes.Base()
	}
	return p.ContentModel
}

// URL 返回页面路径。
func (p Page) URL() string {
	return "/page/" + p.Slug
}

// RichTextPage 是带富文本正文的页面。
type RichTextPage struct {
	PageID           uint `gorm:"primaryKey;autoIncrement:false"`
	Page             Page `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
	content.RichText `gorm:"embedded"`
}

func (p *RichTextPage) BasePage() *Page { return &p.Page }

func (p *RichTextPage) ContentModelName() string { return ContentModelRichTextPage }

// LinkPage 是只在菜单中出现、指向外部地址的页面。
type LinkPage struct {
	PageID uint   `gorm:"primaryKey;autoIncrement:false"`
	Page   Page   `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
	Link   string `gorm:"size:2000;not null"`
}

func (p *LinkPage) BasePage() *Page { return &p.Page }

func (p *LinkPage) ContentModelName() string { return ContentModelLinkPage }
