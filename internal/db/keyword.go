package db

import "github.com/sitepress/internal/content"

// ModelKeyword 是关键词的模型标识。
const ModelKeyword = "generic.keyword"

// Keyword 定义了元信息关键词，被文章与页面共享。
type Keyword struct {
	ID              uint `gorm:"primaryKey"`
	content.Slugged `gorm:"embedded"`
}
