package content

// ContentTyped 为多表继承的基础模型记录具体子类型的标记。
// 基础类型本身的标记保持为空。
type ContentTyped struct {
	ContentModel string `gorm:"size:50" json:"content_model"`
}

// SetContentModel 在首次保存时记录子类型名称，已有标记时不再改变。
func (t *ContentTyped) SetContentModel(name string, isBase bool) {
	if t.ContentModel != "" {
		return
	}
	if isBase {
		return
	}
	t.ContentModel = name
}

// HasConcrete reports whether the record points at a subtype row.
func (t ContentTyped) HasConcrete() bool {
	return t.ContentModel != ""
}

// ContentType 描述一个已注册的具体子类型，供后台组装使用。
type ContentType struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// ContentTypeRegistry 是某个基础类型下的封闭子类型集合。
type ContentTypeRegistry struct {
	base  string
	types []ContentType
}

// NewContentTypeRegistry builds a registry for base with the given subtypes in order.
func NewContentTypeRegistry(base string, types ...ContentType) *ContentTypeRegistry {
	copied := make([]ContentType, len(types))
	copy(copied, types)
	return &ContentTypeRegistry{base: base, types: copied}
}

// Base 返回基础类型名称。
func (r *ContentTypeRegistry) Base() string {
	return r.base
}

// ListConcreteTypes 返回当前注册的全部子类型（不含基础类型本身）。
func (r *ContentTypeRegistry) ListConcreteTypes() []ContentType {
	out := make([]ContentType, len(r.types))
	copy(out, r.types)
	return out
}

// Lookup 按名称查找子类型。
func (r *ContentTypeRegistry) Lookup(name string) (ContentType, bool) {
	for _, t := range r.types {
		if t.Name == name {
			return t, true
		}
	}
	return ContentType{}, false
}
