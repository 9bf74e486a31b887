package service

import (
	"errors"
	"strings"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryParentInvalid 表示父分类不存在、指向自身或本身是子分类。
	ErrCategoryParentInvalid = errors.New("invalid parent category")
	ErrCategoryHasChildren   = errors.New("category has sub-categories")
)

// CategoryService 管理文章分类。
type CategoryService struct {
	db    *gorm.DB
	clock Clock
}

// CategoryInput 为创建或更新分类的参数。
type CategoryInput struct {
	Title    string
	Slug     string
	ParentID *uint
	Visible  *bool
}

// CategoryFilter 控制分类列表。
type CategoryFilter struct {
	// TopLevelOnly 只返回没有父分类的分类
	TopLevelOnly bool
	VisibleOnly  bool
}

// NewCategoryService 构造 CategoryService。
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// List 按标题顺序返回分类。
func (s *CategoryService) List(filter CategoryFilter) ([]db.BlogCategory, error) {
	var categories []db.BlogCategory
	query := s.db.Model(&db.BlogCategory{})
	if filter.TopLevelOnly {
		query = query.Where("parent_id IS NULL")
	}
	if filter.VisibleOnly {
		query = query.Where("visible = ?", true)
	}
	if err := query.Order("title asc").Order("id asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// SubCategories 返回父分类下的子分类。
func (s *CategoryService) SubCategories(parentID uint, visibleOnly bool) ([]db.BlogCategory, error) {
	var categories []db.BlogCategory
	query := s.db.Where("parent_id = ?", parentID)
	if visibleOnly {
		query = query.Where("visible = ?", true)
	}
	if err := query.Order("title asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Get 按 ID 读取分类，附带父分类与子分类。
func (s *CategoryService) Get(id uint) (*db.BlogCategory, error) {
	var category db.BlogCategory
	err := s.db.Preload("Parent").
		Preload("Children", func(tx *gorm.DB) *gorm.DB { return tx.Order("title asc") }).
		First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug 读取分类。topLevel 为 true 时只匹配顶级分类，否则只匹配子分类。
func (s *CategoryService) GetBySlug(slug string, topLevel bool) (*db.BlogCategory, error) {
	var category db.BlogCategory
	query := s.db.Preload("Parent").
		Preload("Children", func(tx *gorm.DB) *gorm.DB { return tx.Order("title asc") }).
		Where("slug = ?", strings.TrimSpace(slug))
	if topLevel {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id IS NOT NULL")
	}
	if err := query.Order("id asc").First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CategoryIDsWithChildren 返回分类自身及其子分类的 ID，用于按分类筛选文章。
func (s *CategoryService) CategoryIDsWithChildren(category *db.BlogCategory) ([]uint, error) {
	ids := []uint{category.ID}
	var children []uint
	if err := s.db.Model(&db.BlogCategory{}).Where("parent_id = ?", category.ID).Pluck("id", &children).Error; err != nil {
		return nil, err
	}
	return append(ids, children...), nil
}

// Create 新建分类。
func (s *CategoryService) Create(input CategoryInput) (*db.BlogCategory, error) {
	category := db.BlogCategory{Visible: true}
	if err := s.save(&category, input); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update 更新分类。
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.BlogCategory, error) {
	var category db.BlogCategory
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.save(&category, input); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) save(category *db.BlogCategory, input CategoryInput) error {
	category.Title = input.Title
	category.Slug = strings.TrimSpace(input.Slug)
	category.Visible = boolOr(input.Visible, category.Visible)

	return s.db.Transaction(func(tx *gorm.DB) error {
		parentID, err := validateParent(tx, category.ID, input.ParentID)
		if err != nil {
			return err
		}
		if parentID != nil && category.ID != 0 {
			var children int64
			if err := tx.Model(&db.BlogCategory{}).Where("parent_id = ?", category.ID).Count(&children).Error; err != nil {
				return err
			}
			if children > 0 {
				return ErrCategoryParentInvalid
			}
		}
		category.ParentID = parentID

		slugs := repository.Checker(repository.NewSlugRepository(tx, &db.BlogCategory{}), category.ID)
		if err := content.PrepareSlugged(&category.Slugged, slugs); err != nil {
			return err
		}
		category.Touch(s.clock.now())

		return tx.Omit("Parent", "Children", "BlogPosts").Save(category).Error
	})
}

// 分类只支持两级：父分类必须存在、不能是自身，且本身不能再有父分类。
func validateParent(tx *gorm.DB, selfID uint, parentID *uint) (*uint, error) {
	if parentID == nil || *parentID == 0 {
		return nil, nil
	}
	if *parentID == selfID {
		return nil, ErrCategoryParentInvalid
	}

	var parent db.BlogCategory
	if err := tx.First(&parent, *parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryParentInvalid
		}
		return nil, err
	}
	if parent.ParentID != nil {
		return nil, ErrCategoryParentInvalid
	}
	id := parent.ID
	return &id, nil
}

// Delete 删除分类，并移除它与文章的关联。存在子分类时拒绝删除。
func (s *CategoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category db.BlogCategory
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		var children int64
		if err := tx.Model(&db.BlogCategory{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return ErrCategoryHasChildren
		}

		return tx.Select("BlogPosts").Delete(&category).Error
	})
}
