package content

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Slugged 提供标题与自动生成的 slug。
type Slugged struct {
	Title string `gorm:"size:500;not null" json:"title"`
	Slug  string `gorm:"size:2000;index" json:"slug"`
}

// MetaData 提供页面元信息。GenDescription 为 true 时，描述在每次保存时由正文重新生成。
type MetaData struct {
	MetaTitle      string `gorm:"size:500" json:"meta_title"`
	Description    string `gorm:"type:text" json:"description"`
	GenDescription bool   `json:"gen_description"`
}

// MetaTitleOrTitle 返回用于 <title> 的标题，未单独设置时回退到正文标题。
func (m MetaData) MetaTitleOrTitle(title string) string {
	if strings.TrimSpace(m.MetaTitle) != "" {
		return m.MetaTitle
	}
	return title
}

// TimeStamped 记录创建与更新时间。Created 只在第一次持久化时写入。
type TimeStamped struct {
	Created *time.Time `gorm:"column:created" json:"created"`
	Updated *time.Time `gorm:"column:updated" json:"updated"`
}

// Touch applies the timestamp rule for a save happening at now.
func (t *TimeStamped) Touch(now time.Time) {
	if t.Created == nil {
		created := now
		t.Created = &created
	}
	updated := now
	t.Updated = &updated
}

// Displayable 是页面、博客文章等可展示内容的公共字段集合。
type Displayable struct {
	Slugged     `gorm:"embedded"`
	MetaData    `gorm:"embedded"`
	TimeStamped `gorm:"embedded"`
	Status      string     `gorm:"size:20;not null;index;default:published" json:"status"`
	PublishDate *time.Time `gorm:"index" json:"publish_date"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	ShortURL    string     `gorm:"size:500" json:"short_url"`
}

// IsPublished reports whether the status is published.
func (d Displayable) IsPublished() bool {
	return d.Status == StatusPublished
}

// IsPublic 判断内容在 now 时刻是否对访客可见：已发布且处于发布窗口内。
func (d Displayable) IsPublic(now time.Time) bool {
	if !d.IsPublished() {
		return false
	}
	if d.PublishDate != nil && d.PublishDate.After(now) {
		return false
	}
	if d.ExpiryDate != nil && !d.ExpiryDate.After(now) {
		return false
	}
	return true
}

// ValidationError 表示保存前的字段校验失败，Field 为出错的字段名。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PrepareOptions 描述一次保存所需的上下文。
type PrepareOptions struct {
	Now time.Time
	// Body 是用于生成描述的 HTML 正文。
	Body string
	// RequireBody 为 true 时，已发布的内容必须有正文。
	RequireBody bool
	// Slugs 检查 slug 作用域内的占用情况，需排除当前记录。
	Slugs SlugChecker
}

// Validate 在任何字段被修改之前执行保存校验，空状态按已发布处理。
func Validate(d *Displayable, body string, requireBody bool) error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "This field is required."}
	}

	status := d.Status
	switch status {
	case "":
		status = StatusPublished
	case StatusDraft, StatusPublished:
	default:
		return &ValidationError{Field: "status", Message: fmt.Sprintf("Select a valid choice. %q is not one of the available choices.", status)}
	}

	if requireBody && status == StatusPublished && strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "content", Message: "This field is required if status is set to published."}
	}
	return nil
}

// Prepare 依次执行保存规则：校验、发布时间默认值、时间戳、slug 生成、描述生成。
// 校验失败时 d 不会被修改。
func Prepare(d *Displayable, opts PrepareOptions) error {
	if err := Validate(d, opts.Body, opts.RequireBody); err != nil {
		return err
	}

	if d.Status == "" {
		d.Status = StatusPublished
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	if d.PublishDate == nil {
		publish := now
		d.PublishDate = &publish
	}

	d.Touch(now)

	if strings.TrimSpace(d.Slug) == "" {
		slug, err := UniqueSlug(Slugify(d.Title), opts.Slugs)
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}
		d.Slug = slug
	}

	if d.GenDescription {
		d.Description = DeriveDescription(opts.Body)
	}

	return nil
}

// PrepareSlugged 为只有标题和 slug 的模型（分类、关键词）生成 slug。
func PrepareSlugged(s *Slugged, slugs SlugChecker) error {
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return &ValidationError{Field: "title", Message: "This field is required."}
	}
	if strings.TrimSpace(s.Slug) != "" {
		return nil
	}
	slug, err := UniqueSlug(Slugify(s.Title), slugs)
	if err != nil {
		return fmt.Errorf("generate slug: %w", err)
	}
	s.Slug = slug
	return nil
}
