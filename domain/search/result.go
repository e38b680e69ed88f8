package search

// Result 一页查询结果
type Result[T any] struct {
	Items       []T `json:"items"`
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	LastPage    int `json:"last_page"`
}

// NewResult 创建结果；total 为 0 时 LastPage 为 0，否则为 ceil(total/perPage)
func NewResult[T any](items []T, total, currentPage, perPage int) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:       items,
		Total:       total,
		CurrentPage: currentPage,
		PerPage:     perPage,
		LastPage:    LastPage(total, perPage),
	}
}

// LastPage 末页页码
func LastPage(total, perPage int) int {
	if total <= 0 {
		return 0
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return (total + perPage - 1) / perPage
}

// ToJSON 输出映射
func (r Result[T]) ToJSON() map[string]any {
	return map[string]any{
		"items":        r.Items,
		"total":        r.Total,
		"current_page": r.CurrentPage,
		"per_page":     r.PerPage,
		"last_page":    r.LastPage,
	}
}

// MapResult 转换结果项，分页信息不变
func MapResult[T, U any](r Result[T], fn func(T) U) Result[U] {
	items := make([]U, len(r.Items))
	for i, it := range r.Items {
		items[i] = fn(it)
	}
	return Result[U]{
		Items:       items,
		Total:       r.Total,
		CurrentPage: r.CurrentPage,
		PerPage:     r.PerPage,
		LastPage:    r.LastPage,
	}
}
