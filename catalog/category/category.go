// Package category 分类聚合与用例
package category

import (
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

// EntityName 用于未找到消息
const EntityName = "Category"

// CategoryID 分类标识
type CategoryID struct{ entity.Uuid }

// NewCategoryID 生成新标识
func NewCategoryID() CategoryID { return CategoryID{entity.NewUuid()} }

// ParseCategoryID 解析标识
func ParseCategoryID(s string) (CategoryID, error) {
	u, err := entity.ParseUuid(s)
	if err != nil {
		return CategoryID{}, err
	}
	return CategoryID{u}, nil
}

// ParseCategoryIDs 批量解析
func ParseCategoryIDs(values []string) ([]CategoryID, error) {
	out := make([]CategoryID, 0, len(values))
	for _, v := range values {
		id, err := ParseCategoryID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Category 分类聚合
type Category struct {
	entity.AggregateRoot
	id          CategoryID
	name        string
	description *string
	isActive    bool
	createdAt   time.Time

	notification *validation.Notification
}

// CreateCommand 创建参数
type CreateCommand struct {
	Name        string
	Description *string
	// IsActive nil 时默认启用
	IsActive *bool
}

var rules = []validation.Rule[*Category]{
	validation.Required("name", func(c *Category) string { return c.name }),
	validation.MaxLength("name", 255, func(c *Category) string { return c.name }),
}

// Create 创建分类并校验；校验结果见 Notification
func Create(cmd CreateCommand) *Category {
	c := &Category{
		id:           NewCategoryID(),
		name:         cmd.Name,
		description:  cmd.Description,
		isActive:     true,
		createdAt:    time.Now().UTC(),
		notification: validation.NewNotification(),
	}
	if cmd.IsActive != nil {
		c.isActive = *cmd.IsActive
	}
	c.Validate()
	c.ApplyEvent(newCreated(c))
	return c
}

// Restore 从存储重建，不产生事件
func Restore(id CategoryID, name string, description *string, isActive bool, createdAt time.Time) *Category {
	return &Category{
		id:           id,
		name:         name,
		description:  description,
		isActive:     isActive,
		createdAt:    createdAt,
		notification: validation.NewNotification(),
	}
}

func (c *Category) ID() CategoryID       { return c.id }
func (c *Category) AggregateID() string  { return c.id.String() }
func (c *Category) Name() string         { return c.name }
func (c *Category) Description() *string { return c.description }
func (c *Category) IsActive() bool       { return c.isActive }
func (c *Category) CreatedAt() time.Time { return c.createdAt }
func (c *Category) EntityID() CategoryID { return c.id }

// Notification 最近一次校验的结果
func (c *Category) Notification() *validation.Notification { return c.notification }

// Validate 执行规则表，fields 为空时校验全部字段
func (c *Category) Validate(fields ...string) bool {
	return validation.Validate(c.notification, c, rules, fields...)
}

// ChangeName 修改名称并校验名称
func (c *Category) ChangeName(name string) {
	c.name = name
	c.Validate("name")
}

// ChangeDescription 修改描述
func (c *Category) ChangeDescription(description *string) {
	c.description = description
}

// Activate 启用
func (c *Category) Activate() { c.isActive = true }

// Deactivate 停用
func (c *Category) Deactivate() { c.isActive = false }

// MarkUpdated 记录更新事件
func (c *Category) MarkUpdated() {
	c.ApplyEvent(newUpdated(c))
}

// MarkDeleted 记录删除事件
func (c *Category) MarkDeleted() {
	c.ApplyEvent(newDeleted(c))
}

// ToJSON 实现 entity.IAggregateRoot
func (c *Category) ToJSON() map[string]any {
	return map[string]any{
		"id":          c.id.String(),
		"name":        c.name,
		"description": c.description,
		"is_active":   c.isActive,
		"created_at":  c.createdAt,
	}
}

// clone 复制状态，不复制事件
func (c *Category) clone() *Category {
	return Restore(c.id, c.name, c.description, c.isActive, c.createdAt)
}

var _ entity.IAggregateRoot = (*Category)(nil)
var _ entity.IEntity[CategoryID] = (*Category)(nil)
