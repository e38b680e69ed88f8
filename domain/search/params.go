// Package search 定义与存储无关的分页/过滤/排序契约
package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/validation"
)

// 默认分页参数
const (
	DefaultPage    = 1
	DefaultPerPage = 15
)

// SortDirection 排序方向
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Input 原始查询参数，字段值保持调用方传入的形态，由 NewParams 统一规整
type Input struct {
	Page    any `json:"page,omitempty"`
	PerPage any `json:"per_page,omitempty"`
	Sort    any `json:"sort,omitempty"`
	SortDir any `json:"sort_dir,omitempty"`
	Filter  any `json:"filter,omitempty"`
}

// FilterFunc 各聚合自定义的过滤条件解析
//
// 空或无效的过滤条件返回 (nil, nil)；原始 ID 字符串应在此转换为类型化标识，
// 空集合的子条件应被丢弃。返回的 Notification 有错误时整体视为查询参数错误。
type FilterFunc[F any] func(raw any, n *validation.Notification) *F

// Params 规整后的查询参数
type Params[F any] struct {
	page    int
	perPage int
	sort    string
	sortDir SortDirection
	filter  *F
}

// NewParams 规整原始输入
//
// page/per_page 转为正整数，无法转换时使用默认值；sort 为空时不排序（由仓储使用默认顺序），
// sort_dir 只接受 asc/desc（大小写不敏感），其他值按 desc 处理。
func NewParams[F any](in Input, filterFn FilterFunc[F]) (Params[F], error) {
	p := Params[F]{
		page:    positiveInt(in.Page, DefaultPage),
		perPage: positiveInt(in.PerPage, DefaultPerPage),
		sort:    scalarString(in.Sort),
	}
	if p.sort != "" {
		p.sortDir = parseSortDir(in.SortDir)
	}
	if filterFn != nil && in.Filter != nil {
		n := validation.NewNotification()
		p.filter = filterFn(in.Filter, n)
		if n.HasErrors() {
			return Params[F]{}, domain.NewSearchValidationError(n.ToJSON())
		}
	}
	return p, nil
}

// MustParams 构造参数，失败时 panic（测试与固定查询使用）
func MustParams[F any](in Input, filterFn FilterFunc[F]) Params[F] {
	p, err := NewParams(in, filterFn)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Params[F]) Page() int {
	if p.page <= 0 {
		return DefaultPage
	}
	return p.page
}

func (p Params[F]) PerPage() int {
	if p.perPage <= 0 {
		return DefaultPerPage
	}
	return p.perPage
}

// Sort 排序字段，空表示未指定
func (p Params[F]) Sort() string { return p.sort }

// SortDir 排序方向；未指定排序字段时为空
func (p Params[F]) SortDir() SortDirection { return p.sortDir }

// Filter 过滤条件，nil 表示不过滤
func (p Params[F]) Filter() *F { return p.filter }

// Offset (page-1)*perPage
func (p Params[F]) Offset() int { return (p.Page() - 1) * p.PerPage() }

// Limit 等于 perPage
func (p Params[F]) Limit() int { return p.PerPage() }

// WithFilter 返回替换过滤条件后的副本
func (p Params[F]) WithFilter(f *F) Params[F] {
	p.filter = f
	return p
}

func positiveInt(v any, def int) int {
	var n float64
	switch t := v.(type) {
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case float64:
		n = t
	case float32:
		n = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		n = parsed
	case interface{ Float64() (float64, error) }:
		parsed, err := t.Float64()
		if err != nil {
			return def
		}
		n = parsed
	default:
		return def
	}
	if n <= 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return def
	}
	return int(n)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case bool, map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func parseSortDir(v any) SortDirection {
	s, _ := v.(string)
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc
	default:
		return Desc
	}
}
