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
	ErrPostNotFound  = errors.New("post not found")
	ErrPostForbidden = errors.New("post is owned by another user")
)

// PostService wraps blog post related database operations.
type PostService struct {
	db     *gorm.DB
	policy content.OwnershipPolicy
	clock  Clock
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Search string
	Status string
	// CategoryIDs 限定文章所属分类，通常由分类及其子分类组成
	CategoryIDs []uint
	// PublicOnly 只返回当前对访客可见的文章
	PublicOnly bool
	// Actor 非空时按所有权过滤（后台列表）
	Actor *content.Actor
	// Page 小于 1 时取第一页，超过总页数时取最后一页
	Page    int
	PerPage int
}

// PostListResult aggregates paginated list data and counters.
type PostListResult struct {
	Posts          []db.BlogPost
	Total          int64
	PublishedCount int64
	DraftCount     int64
	TotalPages     int
	Page           int
	PerPage        int
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title          string
	Slug           string
	Status         string
	Content        string
	Format         string
	MetaTitle      string
	Description    string
	GenDescription *bool
	PublishDate    *time.Time
	ExpiryDate     *time.Time
	ShortURL       string
	AllowComments  *bool
	CategoryIDs    []uint
	KeywordIDs     []uint
	// Keywords 为关键词标题，不存在时自动创建
	Keywords       []string
	RelatedPostIDs []uint
	// UserID 仅超级管理员可指定，其余情况归属当前用户
	UserID uint
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB, policy content.OwnershipPolicy) *PostService {
	return &PostService{db: gdb, policy: policy}
}

// SetClock 替换时间来源，主要用于测试。
func (s *PostService) SetClock(clock Clock) {
	s.clock = clock
}

// Policy 返回当前使用的共享编辑配置。
func (s *PostService) Policy() content.OwnershipPolicy {
	return s.policy
}

func (s *PostService) preloaded(query *gorm.DB) *gorm.DB {
	return query.
		Preload("User").
		Preload("Categories", func(tx *gorm.DB) *gorm.DB { return tx.Order("title asc") }).
		Preload("Keywords").
		Preload("RelatedPosts").
		Preload("FeaturedImages", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") })
}

// Get fetches a post by id with associations preloaded.
func (s *PostService) Get(id uint) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.preloaded(s.db).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetForActor 返回 actor 可见的文章，不可见时视为不存在。
func (s *PostService) GetForActor(actor content.Actor, id uint) (*db.BlogPost, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if len(content.FilterVisible(actor, []db.BlogPost{*post}, s.policy.Shared(db.ModelBlogPost))) == 0 {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// GetBySlug 返回前台可见的文章。
func (s *PostService) GetBySlug(slug string) (*db.BlogPost, error) {
	var post db.BlogPost
	query := publicWindow(s.preloaded(s.db), s.clock.now()).Where("slug = ?", strings.TrimSpace(slug))
	if err := query.Order("id asc").First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	related := post.RelatedPosts[:0]
	now := s.clock.now()
	for _, candidate := range post.RelatedPosts {
		if candidate.IsPublic(now) {
			related = append(related, candidate)
		}
	}
	post.RelatedPosts = related
	return &post, nil
}

// Authorize 确认 actor 可以编辑指定文章。
func (s *PostService) Authorize(actor content.Actor, id uint) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if !s.policy.Shared(db.ModelBlogPost) && !content.CanEdit(actor, post) {
		return nil, ErrPostForbidden
	}
	return &post, nil
}

// List provides paginated posts with aggregated counters based on filters.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{}

	modelQuery := s.applyFilters(s.db.Model(&db.BlogPost{}), filter, true)
	if err := modelQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	result.Page, result.PerPage, result.TotalPages = paginate(filter.Page, filter.PerPage, 10, result.Total)

	if !filter.PublicOnly {
		countQuery := s.applyFilters(s.db.Model(&db.BlogPost{}), filter, false)
		if err := countQuery.Session(&gorm.Session{}).Where("status = ?", content.StatusPublished).Count(&result.PublishedCount).Error; err != nil {
			return nil, err
		}
		if err := countQuery.Session(&gorm.Session{}).Where("status = ?", content.StatusDraft).Count(&result.DraftCount).Error; err != nil {
			return nil, err
		}
	}

	var posts []db.BlogPost
	listQuery := s.applyFilters(s.preloaded(s.db.Model(&db.BlogPost{})), filter, true)
	listQuery = repository.ApplyPagination(listQuery.Order("publish_date desc").Order("id desc"), result.Page, result.PerPage)
	if err := listQuery.Find(&posts).Error; err != nil {
		return nil, err
	}

	result.Posts = posts
	return result, nil
}

// ListVisible 返回 actor 可见的全部文章（不分页），用于相关文章选择。
func (s *PostService) ListVisible(actor content.Actor) ([]db.BlogPost, error) {
	var posts []db.BlogPost
	if err := s.db.Order("publish_date desc").Order("id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return content.FilterVisible(actor, posts, s.policy.Shared(db.ModelBlogPost)), nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter, includeStatus bool) *gorm.DB {
	if filter.Actor != nil {
		if ownerID := s.policy.RestrictTo(*filter.Actor, db.ModelBlogPost); ownerID != 0 {
			query = query.Where("blog_posts.user_id = ?", ownerID)
		}
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("LOWER(blog_posts.title) LIKE ? OR LOWER(blog_posts.content) LIKE ? OR LOWER(blog_posts.description) LIKE ?", pattern, pattern, pattern)
	}

	if ids := uniqueIDs(filter.CategoryIDs); len(ids) > 0 {
		sub := s.db.Table("blog_post_categories").Select("blog_post_id").Where("blog_category_id IN ?", ids)
		query = query.Where("blog_posts.id IN (?)", sub)
	}

	if filter.PublicOnly {
		query = publicWindow(query, s.clock.now())
	} else if includeStatus {
		if status := normalizeStatus(filter.Status); status != "" {
			query = query.Where("blog_posts.status = ?", status)
		}
	}

	return query
}

// Create persists a post and its associations in a transaction.
func (s *PostService) Create(actor content.Actor, input PostInput) (*db.BlogPost, error) {
	post := db.BlogPost{}
	post.GenDescription = true
	post.AllowComments = true

	if input.UserID != 0 && actor.IsSuperuser {
		post.UserID = input.UserID
	}
	content.AssignOwnerOnCreate(actor, &post.Ownable)

	applyPostInput(&post, input)
	if err := s.save(&post, input); err != nil {
		return nil, err
	}
	return s.Get(post.ID)
}

// Update applies updates to an existing post.
func (s *PostService) Update(actor content.Actor, id uint, input PostInput) (*db.BlogPost, error) {
	existing, err := s.Authorize(actor, id)
	if err != nil {
		return nil, err
	}

	if input.UserID != 0 && actor.IsSuperuser {
		existing.UserID = input.UserID
	}

	applyPostInput(existing, input)
	if err := s.save(existing, input); err != nil {
		return nil, err
	}
	return s.Get(existing.ID)
}

// Delete removes a post by id. Featured images are detached rather than removed.
func (s *PostService) Delete(actor content.Actor, id uint) error {
	post, err := s.Authorize(actor, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.FeaturedImage{}).Where("blog_post_id = ?", post.ID).Update("blog_post_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM blog_post_related WHERE related_post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Select("Categories", "Keywords", "RelatedPosts").Delete(post).Error
	})
}

func applyPostInput(post *db.BlogPost, input PostInput) {
	post.Title = strings.TrimSpace(input.Title)
	post.Slug = strings.TrimSpace(input.Slug)
	post.Status = normalizeStatus(input.Status)
	post.Content = input.Content
	post.Format = content.NormalizeFormat(input.Format)
	post.MetaTitle = strings.TrimSpace(input.MetaTitle)
	post.Description = strings.TrimSpace(input.Description)
	post.GenDescription = boolOr(input.GenDescription, post.GenDescription)
	post.AllowComments = boolOr(input.AllowComments, post.AllowComments)
	post.ShortURL = strings.TrimSpace(input.ShortURL)
	if input.PublishDate != nil {
		post.PublishDate = input.PublishDate
	}
	post.ExpiryDate = input.ExpiryDate
}

func (s *PostService) save(post *db.BlogPost, input PostInput) error {
	body, err := richtext.HTML(post.RichText)
	if err != nil {
		return fmt.Errorf("render post content: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		slugs := repository.Checker(repository.NewSlugRepository(tx, &db.BlogPost{}), post.ID)
		if err := content.Prepare(&post.Displayable, content.PrepareOptions{
			Now:         s.clock.now(),
			Body:        body,
			RequireBody: true,
			Slugs:       slugs,
		}); err != nil {
			return err
		}

		categories, err := loadCategories(tx, input.CategoryIDs)
		if err != nil {
			return err
		}
		keywords, err := loadKeywords(tx, input.KeywordIDs, input.Keywords)
		if err != nil {
			return err
		}
		related, err := loadRelatedPosts(tx, input.RelatedPostIDs)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}

		if err := tx.Model(post).Association("Categories").Replace(categories); err != nil {
			return err
		}
		if err := tx.Model(post).Association("Keywords").Replace(keywords); err != nil {
			return err
		}
		if err := tx.Model(post).Association("RelatedPosts").Replace(related); err != nil {
			return err
		}
		return mirrorRelatedPosts(tx, post.ID, related)
	})
}

// mirrorRelatedPosts 让相关文章保持双向：A 关联 B 时 B 也关联 A，A 取消关联时反向记录一并删除。
func mirrorRelatedPosts(tx *gorm.DB, postID uint, related []db.BlogPost) error {
	ids := make([]uint, 0, len(related))
	for _, r := range related {
		if r.ID != postID {
			ids = append(ids, r.ID)
		}
	}

	stale := tx.Where("related_post_id = ? AND blog_post_id <> ?", postID, postID)
	if len(ids) > 0 {
		stale = stale.Where("blog_post_id NOT IN ?", ids)
	}
	if err := stale.Delete(&relatedPostLink{}).Error; err != nil {
		return err
	}

	for _, id := range ids {
		var count int64
		if err := tx.Model(&relatedPostLink{}).
			Where("blog_post_id = ? AND related_post_id = ?", id, postID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := tx.Create(&relatedPostLink{BlogPostID: id, RelatedPostID: postID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// relatedPostLink 映射 blog_post_related 关联表中的一行。
type relatedPostLink struct {
	BlogPostID    uint `gorm:"primaryKey"`
	RelatedPostID uint `gorm:"primaryKey"`
}

func (relatedPostLink) TableName() string {
	return "blog_post_related"
}

func loadCategories(tx *gorm.DB, ids []uint) ([]db.BlogCategory, error) {
	ids = uniqueIDs(ids)
	categories := make([]db.BlogCategory, 0, len(ids))
	if len(ids) == 0 {
		return categories, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, ErrCategoryNotFound
	}
	return categories, nil
}

func loadKeywords(tx *gorm.DB, ids []uint, titles []string) ([]db.Keyword, error) {
	ids = uniqueIDs(ids)
	keywords := make([]db.Keyword, 0, len(ids)+len(titles))
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Find(&keywords).Error; err != nil {
			return nil, err
		}
		if len(keywords) != len(ids) {
			return nil, ErrKeywordNotFound
		}
	}

	ensured, err := ensureKeywords(tx, titles)
	if err != nil {
		return nil, err
	}
	for _, keyword := range ensured {
		duplicate := false
		for _, existing := range keywords {
			if existing.ID == keyword.ID {
				duplicate = true
				break
			}
		}
		if !duplicate {
			keywords = append(keywords, keyword)
		}
	}
	return keywords, nil
}

// 相关文章允许自引用与互相引用，不做环检测。
func loadRelatedPosts(tx *gorm.DB, ids []uint) ([]db.BlogPost, error) {
	ids = uniqueIDs(ids)
	related := make([]db.BlogPost, 0, len(ids))
	if len(ids) == 0 {
		return related, nil
	}
	if err := tx.Omit(clause.Associations).Where("id IN ?", ids).Find(&related).Error; err != nil {
		return nil, err
	}
	if len(related) != len(ids) {
		return nil, ErrPostNotFound
	}
	return related, nil
}
