package content

// Actor 表示执行操作的后台用户。
type Actor struct {
	ID          uint
	IsSuperuser bool
}

// Ownable 让记录归属于唯一的用户。
type Ownable struct {
	UserID uint `gorm:"index;not null" json:"user_id"`
}

// OwnerID returns the owning user id, zero when unset.
func (o Ownable) OwnerID() uint {
	return o.UserID
}

// Owned 是可按所有者过滤的记录。
type Owned interface {
	OwnerID() uint
}

// AssignOwnerOnCreate 在所有者为空时将其设为 actor，已设置的所有者不会被覆盖。
func AssignOwnerOnCreate(actor Actor, o *Ownable) {
	if o.UserID == 0 {
		o.UserID = actor.ID
	}
}

// CanEdit 限制编辑权限：仅超级管理员或所有者本人。
func CanEdit(actor Actor, record Owned) bool {
	return actor.IsSuperuser || actor.ID == record.OwnerID()
}

// FilterVisible 过滤出 actor 可见的记录。超级管理员或共享编辑的模型可见全部记录。
func FilterVisible[T Owned](actor Actor, records []T, shared bool) []T {
	if shared || actor.IsSuperuser {
		return records
	}
	visible := make([]T, 0, len(records))
	for _, record := range records {
		if record.OwnerID() == actor.ID {
			visible = append(visible, record)
		}
	}
	return visible
}

// OwnershipPolicy 保存被标记为“共享编辑”的模型列表（格式 app.model，如 blog.blogpost）。
type OwnershipPolicy struct {
	allEditable map[string]struct{}
}

// NewOwnershipPolicy builds a policy from the configured allow-list.
func NewOwnershipPolicy(allEditable []string) OwnershipPolicy {
	set := make(map[string]struct{}, len(allEditable))
	for _, model := range allEditable {
		if model == "" {
			continue
		}
		set[model] = struct{}{}
	}
	return OwnershipPolicy{allEditable: set}
}

// Shared 判断模型是否绕过可见性过滤。
func (p OwnershipPolicy) Shared(model string) bool {
	_, ok := p.allEditable[model]
	return ok
}

// RestrictTo 返回列表查询需要限定的所有者 ID；返回 0 表示不限定。
func (p OwnershipPolicy) RestrictTo(actor Actor, model string) uint {
	if actor.IsSuperuser || p.Shared(model) {
		return 0
	}
	return actor.ID
}
