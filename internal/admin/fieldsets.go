package admin

// Fieldset 描述后台编辑表单中的一组字段。Fields 中每一行可以包含多个并排显示的字段。
type Fieldset struct {
	Name    string     `json:"name"`
	Fields  [][]string `json:"fields"`
	Classes []string   `json:"classes,omitempty"`
}

const classCollapseClosed = "collapse-closed"

func row(fields ...string) []string {
	return fields
}

// DisplayableFieldsets 返回可展示内容（页面、文章）共用的字段分组。每次调用都返回新的副本。
func DisplayableFieldsets() []Fieldset {
	return []Fieldset{
		{
			Fields: [][]string{
				row("title"),
				row("status"),
				row("publish_date", "expiry_date"),
			},
		},
		{
			Name: "Meta data",
			Fields: [][]string{
				row("meta_title"),
				row("slug"),
				row("description", "gen_description"),
				row("keywords"),
			},
			Classes: []string{classCollapseClosed},
		},
	}
}

// BlogPostFieldsets 在通用分组的基础上加入分类、正文与相关文章。
func BlogPostFieldsets() []Fieldset {
	fieldsets := cloneFieldsets(DisplayableFieldsets())

	main := &fieldsets[0]
	main.Fields = insertRow(main.Fields, 1, row("categories"))
	main.Fields = append(main.Fields, row("content"))

	related := Fieldset{
		Name:    "Other posts",
		Fields:  [][]string{row("related_posts")},
		Classes: []string{classCollapseClosed},
	}
	return insertFieldset(fieldsets, 1, related)
}

// RichTextPageFieldsets 为富文本页面追加正文字段。
func RichTextPageFieldsets() []Fieldset {
	fieldsets := cloneFieldsets(DisplayableFieldsets())
	fieldsets[0].Fields = append(fieldsets[0].Fields, row("content"), row("in_menus"))
	return fieldsets
}

// LinkPageFieldsets 链接页面只需要标题、地址与菜单设置。
func LinkPageFieldsets() []Fieldset {
	return []Fieldset{
		{Fields: [][]string{row("title"), row("link"), row("in_menus")}},
	}
}

func cloneFieldsets(src []Fieldset) []Fieldset {
	out := make([]Fieldset, len(src))
	for i, fs := range src {
		out[i] = Fieldset{Name: fs.Name}
		if fs.Classes != nil {
			out[i].Classes = append([]string(nil), fs.Classes...)
		}
		out[i].Fields = make([][]string, len(fs.Fields))
		for j, r := range fs.Fields {
			out[i].Fields[j] = append([]string(nil), r...)
		}
	}
	return out
}

func insertRow(rows [][]string, index int, r []string) [][]string {
	if index > len(rows) {
		index = len(rows)
	}
	rows = append(rows, nil)
	copy(rows[index+1:], rows[index:])
	rows[index] = r
	return rows
}

func insertFieldset(fieldsets []Fieldset, index int, fs Fieldset) []Fieldset {
	if index > len(fieldsets) {
		index = len(fieldsets)
	}
	fieldsets = append(fieldsets, Fieldset{})
	copy(fieldsets[index+1:], fieldsets[index:])
	fieldsets[index] = fs
	return fieldsets
}
