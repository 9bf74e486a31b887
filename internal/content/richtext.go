package content

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// RichText 为模型提供正文字段。Format 为空时按 HTML 处理。
type RichText struct {
	Content string `gorm:"type:text" json:"content"`
	Format  string `gorm:"size:20;default:html" json:"format"`
}

// IsMarkdown reports whether the content must be rendered before use.
func (r RichText) IsMarkdown() bool {
	return r.Format == FormatMarkdown
}

// NormalizeFormat 将未知格式回退为 HTML。
func NormalizeFormat(format string) string {
	if format == FormatMarkdown {
		return FormatMarkdown
	}
	return FormatHTML
}
