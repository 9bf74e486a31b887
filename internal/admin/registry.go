package admin

import (
	"sort"

	"github.com/sitepress/internal/content"
	"github.com/sitepress/internal/db"
)

// ModelAdmin 描述一个模型在后台的列表与表单配置，供前端动态组装界面。
type ModelAdmin struct {
	Model            string                `json:"model"`
	Label            string                `json:"label"`
	ListDisplay      []string              `json:"list_display"`
	ListDisplayLinks []string              `json:"list_display_links,omitempty"`
	ListEditable     []string              `json:"list_editable,omitempty"`
	ListFilter       []string              `json:"list_filter,omitempty"`
	SearchFields     []string              `json:"search_fields,omitempty"`
	DateHierarchy    string                `json:"date_hierarchy,omitempty"`
	Fieldsets        []Fieldset            `json:"fieldsets,omitempty"`
	Inlines          []string              `json:"inlines,omitempty"`
	FilterHorizontal []string              `json:"filter_horizontal,omitempty"`
	Ownable          bool                  `json:"ownable"`
	Shared           bool                  `json:"shared"`
	ContentTypes     []content.ContentType `json:"content_types,omitempty"`
	// TypeFieldsets 为各个具体子类型提供独立的表单分组
	TypeFieldsets    map[string][]Fieldset `json:"type_fieldsets,omitempty"`
	ReadOnly         bool                  `json:"read_only"`
}

// displayableAdmin 返回可展示内容的通用列表配置。
func displayableAdmin(model, label string) ModelAdmin {
	return ModelAdmin{
		Model:            model,
		Label:            label,
		ListDisplay:      []string{"title", "status"},
		ListDisplayLinks: []string{"title"},
		ListEditable:     []string{"status"},
		ListFilter:       []string{"status"},
		SearchFields:     []string{"title", "description"},
		DateHierarchy:    "publish_date",
		Fieldsets:        DisplayableFieldsets(),
	}
}

// Registry 保存后台可用的模型配置。
type Registry struct {
	models map[string]ModelAdmin
}

// NewRegistry 构建默认注册表，policy 决定哪些模型标记为共享编辑。
func NewRegistry(policy content.OwnershipPolicy) *Registry {
	post := displayableAdmin(db.ModelBlogPost, "Blog posts")
	post.Fieldsets = BlogPostFieldsets()
	post.ListDisplay = []string{"title", "user", "status"}
	post.ListFilter = append(append([]string(nil), post.ListFilter...), "categories")
	post.SearchFields = append(post.SearchFields, "content")
	post.Inlines = []string{"featured_images"}
	post.FilterHorizontal = []string{"categories", "related_posts"}
	post.Ownable = true
	post.Shared = policy.Shared(db.ModelBlogPost)

	page := displayableAdmin(db.ModelPage, "Pages")
	page.ListDisplay = []string{"title", "status", "content_model", "in_menus"}
	page.ContentTypes = db.PageContentTypes.ListConcreteTypes()
	page.TypeFieldsets = map[string][]Fieldset{
		db.ContentModelRichTextPage: RichTextPageFieldsets(),
		db.ContentModelLinkPage:     LinkPageFieldsets(),
	}

	models := []ModelAdmin{
		post,
		page,
		{
			Model:       db.ModelBlogCategory,
			Label:       "Blog categories",
			ListDisplay: []string{"title"},
			Fieldsets:   []Fieldset{{Fields: [][]string{row("title"), row("parent"), row("visible")}}},
		},
		{
			Model:       db.ModelKeyword,
			Label:       "Keywords",
			ListDisplay: []string{"title"},
			Fieldsets:   []Fieldset{{Fields: [][]string{row("title")}}},
		},
		{
			Model:       db.ModelContactMessage,
			Label:       "Messages",
			ListDisplay: []string{"name", "email", "subject", "created_at"},
			ReadOnly:    true,
		},
	}

	r := &Registry{models: make(map[string]ModelAdmin, len(models))}
	for _, m := range models {
		r.models[m.Model] = m
	}
	return r
}

// Lookup 返回模型配置，支持完整标识（blog.blogpost）或短名（blogpost）。
func (r *Registry) Lookup(name string) (ModelAdmin, bool) {
	if m, ok := r.models[name]; ok {
		return m, true
	}
	for key, m := range r.models {
		if shortName(key) == name {
			return m, true
		}
	}
	return ModelAdmin{}, false
}

// Models 按标识排序返回全部模型配置。
func (r *Registry) Models() []ModelAdmin {
	out := make([]ModelAdmin, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

func shortName(model string) string {
	for i := len(model) - 1; i >= 0; i-- {
		if model[i] == '.' {
			return model[i+1:]
		}
	}
	return model
}
