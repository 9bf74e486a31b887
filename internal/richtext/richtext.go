package richtext

import (
	"bytes"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sitepress/internal/content"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)

	embedSrcPattern = regexp.MustCompile(`^https://(?:www\.)?(?:youtube\.com/embed/|youtube-nocookie\.com/embed/|player\.vimeo\.com/video/)`)

	sanitizer = buildSanitizer()
)

// 编辑器产出的 HTML 中常见的视频嵌入只放行可信来源。
func buildSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("src").Matching(embedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("width", "height", "title", "allow", "allowfullscreen", "frameborder").OnElements("iframe")
	return policy
}

// HTML 返回正文的 HTML 形式：Markdown 先渲染，HTML 原样返回。结果未经过滤，仅用于摘要提取。
func HTML(rt content.RichText) (string, error) {
	if !rt.IsMarkdown() {
		return rt.Content, nil
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(rt.Content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render 返回可直接输出到前台模板的安全 HTML。
func Render(rt content.RichText) (template.HTML, error) {
	raw, err := HTML(rt)
	if err != nil {
		return "", err
	}
	return template.HTML(Sanitize(raw)), nil
}

// Sanitize 使用 UGC 策略过滤 HTML。
func Sanitize(raw string) string {
	return sanitizer.Sanitize(raw)
}
