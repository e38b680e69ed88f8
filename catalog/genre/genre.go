// Package genre 类型聚合与用例
package genre

import (
	"slices"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/catalog/category"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

const EntityName = "Genre"

// GenreID 标识
type GenreID struct{ entity.Uuid }

func NewGenreID() GenreID { return GenreID{entity.NewUuid()} }

func ParseGenreID(s string) (GenreID, error) {
	u, err := entity.ParseUuid(s)
	if err != nil {
		return GenreID{}, err
	}
	return GenreID{u}, nil
}

// ParseGenreIDs 批量解析
func ParseGenreIDs(values []string) ([]GenreID, error) {
	out := make([]GenreID, 0, len(values))
	for _, v := range values {
		id, err := ParseGenreID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Genre 类型聚合；关联分类以标识集合保存
type Genre struct {
	entity.AggregateRoot
	id           GenreID
	name         string
	categoriesID []category.CategoryID
	isActive     bool
	createdAt    time.Time

	notification *validation.Notification
}

var rules = []validation.Rule[*Genre]{
	validation.Required("name", func(g *Genre) string { return g.name }),
	validation.MaxLength("name", 255, func(g *Genre) string { return g.name }),
	{Field: "categories_id", Check: func(g *Genre) []string {
		if len(g.categoriesID) == 0 {
			return []string{"categories_id should not be empty"}
		}
		return nil
	}},
}

// CreateCommand 创建参数
type CreateCommand struct {
	Name         string
	CategoriesID []category.CategoryID
	IsActive     *bool
}

// Create 创建并校验
func Create(cmd CreateCommand) *Genre {
	g := &Genre{
		id:           NewGenreID(),
		name:         cmd.Name,
		isActive:     true,
		createdAt:    time.Now().UTC(),
		notification: validation.NewNotification(),
	}
	if cmd.IsActive != nil {
		g.isActive = *cmd.IsActive
	}
	g.categoriesID = dedupe(cmd.CategoriesID)
	validation.Validate(g.notification, g, rules)
	return g
}

// Restore 从存储重建
func Restore(id GenreID, name string, categoriesID []category.CategoryID, isActive bool, createdAt time.Time) *Genre {
	return &Genre{
		id:           id,
		name:         name,
		categoriesID: dedupe(categoriesID),
		isActive:     isActive,
		createdAt:    createdAt,
		notification: validation.NewNotification(),
	}
}

func (g *Genre) ID() GenreID                            { return g.id }
func (g *Genre) AggregateID() string                    { return g.id.String() }
func (g *Genre) Name() string                           { return g.name }
func (g *Genre) IsActive() bool                         { return g.isActive }
func (g *Genre) CreatedAt() time.Time                   { return g.createdAt }
func (g *Genre) Notification() *validation.Notification { return g.notification }

// CategoriesID 关联分类（副本）
func (g *Genre) CategoriesID() []category.CategoryID {
	return slices.Clone(g.categoriesID)
}

func (g *Genre) ChangeName(name string) {
	g.name = name
	validation.Validate(g.notification, g, rules, "name")
}

// SyncCategoriesID 整体替换关联分类
func (g *Genre) SyncCategoriesID(ids []category.CategoryID) {
	g.categoriesID = dedupe(ids)
	validation.Validate(g.notification, g, rules, "categories_id")
}

// AddCategoryID 追加关联分类，已存在时忽略
func (g *Genre) AddCategoryID(id category.CategoryID) {
	g.categoriesID = dedupe(append(g.categoriesID, id))
}

// RemoveCategoryID 移除关联分类
func (g *Genre) RemoveCategoryID(id category.CategoryID) {
	g.categoriesID = slices.DeleteFunc(g.categoriesID, func(c category.CategoryID) bool { return c.Equals(id.Uuid) })
}

func (g *Genre) Activate()   { g.isActive = true }
func (g *Genre) Deactivate() { g.isActive = false }

// HasAnyCategory 是否关联了 ids 中任一分类
func (g *Genre) HasAnyCategory(ids []category.CategoryID) bool {
	for _, id := range ids {
		if slices.Contains(g.categoriesID, id) {
			return true
		}
	}
	return false
}

func (g *Genre) ToJSON() map[string]any {
	ids := make([]string, len(g.categoriesID))
	for i, id := range g.categoriesID {
		ids[i] = id.String()
	}
	return map[string]any{
		"id":            g.id.String(),
		"name":          g.name,
		"categories_id": ids,
		"is_active":     g.isActive,
		"created_at":    g.createdAt,
	}
}

func (g *Genre) clone() *Genre {
	return Restore(g.id, g.name, g.categoriesID, g.isActive, g.createdAt)
}

func dedupe(ids []category.CategoryID) []category.CategoryID {
	out := make([]category.CategoryID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

var _ entity.IAggregateRoot = (*Genre)(nil)
