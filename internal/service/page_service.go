package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/repository"
	"github.com/sitepress/internal/richtext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPageNotFound = errors.New("page not found")
	// ErrUnknownContentModel 表示页面记录中的子类型标记未注册。
	ErrUnknownContentModel = errors.New("unknown page content model")
)

// PageService 管理页面及其子类型。
type PageService struct {
	db    *gorm.DB
	clock Clock
}

// PageInput 为页面的可编辑字段，子类型只读取与自身相关的字段。
type PageInput struct {
	Title          string
	Slug           string
	Status         string
	MetaTitle      string
	Description    string
	GenDescription *bool
	PublishDate    *time.Time
	ExpiryDate     *time.Time
	ShortURL       string
	InMenus        *bool
	SortOrder      *int
	KeywordIDs     []uint
	Keywords       []string

	// 富文本页面
	Content string
	Format  string

	// 链接页面
	Link string
}

// PageFilter 控制页面列表。
type PageFilter struct {
	InMenusOnly bool
	PublicOnly  bool
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// SetClock 替换时间来源。
func (s *PageService) SetClock(clock Clock) {
	s.clock = clock
}

// ListConcreteTypes 返回可创建的页面子类型。
func (s *PageService) ListConcreteTypes() []content.ContentType {
	return db.PageContentTypes.ListConcreteTypes()
}

// List 按 sort_order 返回页面基础记录。
func (s *PageService) List(filter PageFilter) ([]db.Page, error) {
	var pages []db.Page
	query := s.db.Model(&db.Page{}).Preload("Keywords")
	if filter.InMenusOnly {
		query = query.Where("in_menus = ?", true)
	}
	if filter.PublicOnly {
		query = publicWindow(query, s.clock.now())
	}
	if err := query.Order("sort_order asc").Order("id asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Get 读取页面基础记录。
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.Preload("Keywords").First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetConcrete 读取页面并解析为具体子类型。
func (s *PageService) GetConcrete(id uint) (db.ConcretePage, error) {
	page, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.ResolveConcrete(page)
}

// GetBySlug fetches a publicly visible page for a given slug.
func (s *PageService) GetBySlug(slug string) (db.ConcretePage, error) {
	var page db.Page
	query := publicWindow(s.db.Preload("Keywords"), s.clock.now()).Where("slug = ?", strings.TrimSpace(slug))
	if err := query.Order("id asc").First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return s.ResolveConcrete(&page)
}

// ResolveConcrete 根据子类型标记加载具体页面。标记为空时返回基础页面本身。
func (s *PageService) ResolveConcrete(page *db.Page) (db.ConcretePage, error) {
	switch page.ContentModel {
	case "":
		return page, nil
	case db.ContentModelRichTextPage:
		var concrete db.RichTextPage
		if err := s.loadConcrete(&concrete, page.ID); err != nil {
			return nil, err
		}
		concrete.Page = *page
		return &concrete, nil
	case db.ContentModelLinkPage:
		var concrete db.LinkPage
		if err := s.loadConcrete(&concrete, page.ID); err != nil {
			return nil, err
		}
		concrete.Page = *page
		return &concrete, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentModel, page.ContentModel)
	}
}

func (s *PageService) loadConcrete(dest interface{}, pageID uint) error {
	err := s.db.Omit(clause.Associations).Where("page_id = ?", pageID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPageNotFound
	}
	return err
}

// CreateBase 创建不带子类型的基础页面。
func (s *PageService) CreateBase(input PageInput) (*db.Page, error) {
	page := &db.Page{}
	page.GenDescription = true
	if err := s.save(page, input); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateRichText 创建富文本页面。
func (s *PageService) CreateRichText(input PageInput) (*db.RichTextPage, error) {
	page := &db.RichTextPage{}
	page.Page.GenDescription = true
	if err := s.save(page, input); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateLink 创建链接页面。
func (s *PageService) CreateLink(input PageInput) (*db.LinkPage, error) {
	page := &db.LinkPage{}
	page.Page.GenDescription = true
	if err := s.save(page, input); err != nil {
		return nil, err
	}
	return page, nil
}

// Create 按子类型名称创建页面，name 为空或为基础类型时创建基础页面。
func (s *PageService) Create(model string, input PageInput) (db.ConcretePage, error) {
	var concrete db.ConcretePage
	switch strings.ToLower(strings.TrimSpace(model)) {
	case "", db.PageContentTypes.Base():
		concrete = &db.Page{}
	case db.ContentModelRichTextPage:
		concrete = &db.RichTextPage{}
	case db.ContentModelLinkPage:
		concrete = &db.LinkPage{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentModel, model)
	}

	concrete.BasePage().GenDescription = true
	if err := s.save(concrete, input); err != nil {
		return nil, err
	}
	return concrete, nil
}

// Update 更新页面，子类型不可改变。
func (s *PageService) Update(id uint, input PageInput) (db.ConcretePage, error) {
	concrete, err := s.GetConcrete(id)
	if err != nil {
		return nil, err
	}
	if err := s.save(concrete, input); err != nil {
		return nil, err
	}
	return concrete, nil
}

// Delete 删除页面及其子类型记录。
func (s *PageService) Delete(id uint) error {
	page, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		switch page.ContentModel {
		case db.ContentModelRichTextPage:
			if err := tx.Where("page_id = ?", page.ID).Delete(&db.RichTextPage{}).Error; err != nil {
				return err
			}
		case db.ContentModelLinkPage:
			if err := tx.Where("page_id = ?", page.ID).Delete(&db.LinkPage{}).Error; err != nil {
				return err
			}
		}
		return tx.Select("Keywords").Delete(page).Error
	})
}

func applyPageInput(page *db.Page, input PageInput) {
	page.Title = strings.TrimSpace(input.Title)
	page.Slug = strings.TrimSpace(input.Slug)
	page.Status = normalizeStatus(input.Status)
	page.MetaTitle = strings.TrimSpace(input.MetaTitle)
	page.Description = strings.TrimSpace(input.Description)
	page.GenDescription = boolOr(input.GenDescription, page.GenDescription)
	page.ShortURL = strings.TrimSpace(input.ShortURL)
	page.InMenus = boolOr(input.InMenus, page.InMenus)
	if input.SortOrder != nil {
		page.SortOrder = *input.SortOrder
	}
	if input.PublishDate != nil {
		page.PublishDate = input.PublishDate
	}
	page.ExpiryDate = input.ExpiryDate
}

func (s *PageService) save(concrete db.ConcretePage, input PageInput) error {
	page := concrete.BasePage()
	applyPageInput(page, input)

	var (
		body        string
		requireBody bool
	)
	switch p := concrete.(type) {
	case *db.RichTextPage:
		p.Content = input.Content
		p.Format = content.NormalizeFormat(input.Format)
		rendered, err := richtext.HTML(p.RichText)
		if err != nil {
			return fmt.Errorf("render page content: %w", err)
		}
		body, requireBody = rendered, true
	case *db.LinkPage:
		p.Link = strings.TrimSpace(input.Link)
		if p.Link == "" {
			return &content.ValidationError{Field: "link", Message: "This field is required."}
		}
	}

	isBase := concrete.ContentModelName() == db.PageContentTypes.Base()
	page.SetContentModel(concrete.ContentModelName(), isBase)

	return s.db.Transaction(func(tx *gorm.DB) error {
		slugs := repository.Checker(repository.NewSlugRepository(tx, &db.Page{}), page.ID)
		if err := content.Prepare(&page.Displayable, content.PrepareOptions{
			Now:         s.clock.now(),
			Body:        body,
			RequireBody: requireBody,
			Slugs:       slugs,
		}); err != nil {
			return err
		}

		keywords, err := loadKeywords(tx, input.KeywordIDs, input.Keywords)
		if err != nil {
			return err
		}

		creating := page.ID == 0
		if err := tx.Omit(clause.Associations).Save(page).Error; err != nil {
			return err
		}
		if err := tx.Model(page).Association("Keywords").Replace(keywords); err != nil {
			return err
		}

		switch p := concrete.(type) {
		case *db.RichTextPage:
			p.PageID = page.ID
			return saveConcreteRow(tx, p, creating)
		case *db.LinkPage:
			p.PageID = page.ID
			return saveConcreteRow(tx, p, creating)
		}
		return nil
	})
}

func saveConcreteRow(tx *gorm.DB, row interface{}, creating bool) error {
	if creating {
		return tx.Omit("Page").Create(row).Error
	}
	return tx.Omit("Page").Save(row).Error
}
