package service

import (
	"errors"
	"strings"
	"time"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
	"github.com/sitepress/internal/repository"
	"gorm.io/gorm"
)

// Clock 返回当前时间，测试中可替换。
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// publicWindow 限定已发布且处于发布窗口内的内容。
func publicWindow(query *gorm.DB, now time.Time) *gorm.DB {
	return query.Where("status = ?", content.StatusPublished).
		Where("publish_date IS NULL OR publish_date <= ?", now).
		Where("expiry_date IS NULL OR expiry_date > ?", now)
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func paginate(page, perPage, defaultPerPage int, total int64) (int, int, int) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	totalPages := repository.TotalPages(total, perPage)
	return repository.ClampPage(page, total, perPage), perPage, totalPages
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ensureKeywords 按标题查找关键词，不存在时创建。返回顺序与输入一致，重复标题只保留一次。
func ensureKeywords(tx *gorm.DB, titles []string) ([]db.Keyword, error) {
	keywords := make([]db.Keyword, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))
	for _, raw := range titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		var keyword db.Keyword
		err := tx.Where("LOWER(title) = ?", key).First(&keyword).Error
		if err == nil {
			keywords = append(keywords, keyword)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		keyword = db.Keyword{Slugged: content.Slugged{Title: title}}
		slugs := repository.Checker(repository.NewSlugRepository(tx, &db.Keyword{}), 0)
		if err := content.PrepareSlugged(&keyword.Slugged, slugs); err != nil {
			return nil, err
		}
		if err := tx.Create(&keyword).Error; err != nil {
			return nil, err
		}
		keywords = append(keywords, keyword)
	}
	return keywords, nil
}
