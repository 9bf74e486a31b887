package repository

import (
	"github.com/sitepress/internal/content"
	"gorm.io/gorm"
)

// SlugRepository 按 slug 查询某个作用域（一张基础表）内的占用情况。
type SlugRepository interface {
	CountBySlug(slug string, excludeID uint) (int64, error)
}

// GormSlugRepository GORM 实现
type GormSlugRepository struct {
	db    *gorm.DB
	model interface{}
}

// NewSlugRepository 创建 slug 仓库，model 决定作用域所在的表。
// 页面的各个子类型都应传入 &db.Page{}，以共享同一个 slug 空间。
func NewSlugRepository(gdb *gorm.DB, model interface{}) *GormSlugRepository {
	return &GormSlugRepository{db: gdb, model: model}
}

// CountBySlug 统计 slug 数量，excludeID 为 0 时不排除任何记录
func (r *GormSlugRepository) CountBySlug(slug string, excludeID uint) (int64, error) {
	var count int64
	query := r.db.Model(r.model).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Checker 把仓库适配为 content.SlugChecker，并排除当前记录。
func Checker(repo SlugRepository, excludeID uint) content.SlugChecker {
	return content.SlugCheckerFunc(func(slug string) (bool, error) {
		count, err := repo.CountBySlug(slug, excludeID)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	})
}
