// Package gormrepo 提供 gorm 仓储共用的排序、分页与关联表辅助
package gormrepo

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

// FieldOrder 生成单个字段的 ORDER BY 片段
type FieldOrder func(column string, dir search.SortDirection) string

// DefaultOrder `<column> <dir>`
func DefaultOrder(column string, dir search.SortDirection) string {
	return fmt.Sprintf("%s %s", column, dir)
}

// BinaryOrder mysql 下按二进制（区分大小写）排序
func BinaryOrder(column string, dir search.SortDirection) string {
	return fmt.Sprintf("binary %s %s", column, dir)
}

// Sorting 某张表的排序策略
//
// Overrides 按方言名（gorm Dialector.Name()）再按字段覆盖默认排序，例如：
//
//	Overrides: map[string]map[string]FieldOrder{"mysql": {"name": BinaryOrder}}
type Sorting struct {
	Table     string
	Fields    []string
	Overrides map[string]map[string]FieldOrder
}

// Clause 生成 ORDER BY 子句；未指定或不可排序时为 `<table>.created_at desc`
func (s Sorting) Clause(dialect, sort string, dir search.SortDirection) string {
	if sort == "" || !search.IsSortable(sort, s.Fields) {
		return fmt.Sprintf("%s.created_at %s", s.Table, search.Desc)
	}
	if dir != search.Asc {
		dir = search.Desc
	}
	column := fmt.Sprintf("%s.%s", s.Table, sort)
	if byField, ok := s.Overrides[dialect]; ok {
		if order, ok := byField[sort]; ok {
			return order(column, dir)
		}
	}
	return DefaultOrder(column, dir)
}

// OrderBy 按查询参数为 q 追加排序
func OrderBy[F any](q *gorm.DB, s Sorting, params search.Params[F]) *gorm.DB {
	return q.Order(s.Clause(q.Dialector.Name(), params.Sort(), params.SortDir()))
}
