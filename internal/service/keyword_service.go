package service

import (
	"errors"
	"strings"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/repository"
	"gorm.io/gorm"
)

var ErrKeywordNotFound = errors.New("keyword not found")

// KeywordService 管理文章与页面共享的关键词。
type KeywordService struct {
	db *gorm.DB
}

// NewKeywordService 构造 KeywordService。
func NewKeywordService(gdb *gorm.DB) *KeywordService {
	return &KeywordService{db: gdb}
}

// List 返回全部关键词，search 非空时按标题模糊匹配。
func (s *KeywordService) List(search string) ([]db.Keyword, error) {
	var keywords []db.Keyword
	query := s.db.Model(&db.Keyword{})
	if strings.TrimSpace(search) != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(search))
	}
	if err := query.Order("title asc").Find(&keywords).Error; err != nil {
		return nil, err
	}
	return keywords, nil
}

// Get 按 ID 读取关键词。
func (s *KeywordService) Get(id uint) (*db.Keyword, error) {
	var keyword db.Keyword
	if err := s.db.First(&keyword, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeywordNotFound
		}
		return nil, err
	}
	return &keyword, nil
}

// Create 按标题创建关键词，同名（忽略大小写）关键词已存在时直接返回它。
func (s *KeywordService) Create(title string) (*db.Keyword, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &content.ValidationError{Field: "title", Message: "This field is required."}
	}
	keywords, err := s.EnsureTitles([]string{title})
	if err != nil {
		return nil, err
	}
	return &keywords[0], nil
}

// EnsureTitles 批量确保关键词存在。
func (s *KeywordService) EnsureTitles(titles []string) ([]db.Keyword, error) {
	var keywords []db.Keyword
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		keywords, err = ensureKeywords(tx, titles)
		return err
	})
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

// Update 修改关键词标题与 slug，slug 为空时按新标题重新生成。
func (s *KeywordService) Update(id uint, title, slug string) (*db.Keyword, error) {
	keyword, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	keyword.Title = title
	keyword.Slug = strings.TrimSpace(slug)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		slugs := repository.Checker(repository.NewSlugRepository(tx, &db.Keyword{}), keyword.ID)
		if err := content.PrepareSlugged(&keyword.Slugged, slugs); err != nil {
			return err
		}
		return tx.Save(keyword).Error
	})
	if err != nil {
		return nil, err
	}
	return keyword, nil
}

// Delete 删除关键词并解除它与文章、页面的关联。
func (s *KeywordService) Delete(id uint) error {
	keyword, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM blog_post_keywords WHERE keyword_id = ?", keyword.ID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM page_keywords WHERE keyword_id = ?", keyword.ID).Error; err != nil {
			return err
		}
		return tx.Delete(keyword).Error
	})
}
