package repository

import (
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ApplyPagination 应用分页参数，统一处理非法页码与偏移量。
func ApplyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return query.Limit(pageSize).Offset(offset)
}

// TotalPages 计算总页数，没有数据时仍视为 1 页。
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// OutOfRange 表示请求的页码超出范围，交由 ClampPage 定位到最后一页。
const OutOfRange = math.MaxInt32

// ParsePage 解析前台传入的页码：非整数回到第一页，小于 1 视为超出范围。
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if page < 1 {
		return OutOfRange
	}
	return page
}

// ClampPage 将页码限制在 [1, 总页数] 内，超出范围时回到最后一页。
func ClampPage(page int, total int64, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize); page > last {
		return last
	}
	return page
}

// ResolvePage 组合 ParsePage 与 ClampPage。
func ResolvePage(raw string, total int64, pageSize int) int {
	return ClampPage(ParsePage(raw), total, pageSize)
}
