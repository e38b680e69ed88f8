// Package memrepo 提供基于内存的通用聚合仓储，供内存实现与测试使用
package memrepo

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
)

// Comparator 字段比较函数（升序语义）
type Comparator[E any] func(a, b E) int

// Config 仓储配置
type Config[E entity.IAggregateRoot, F any] struct {
	// Entity 聚合名，用于 NotFoundError
	Entity string
	// Sortable 可排序字段及其比较函数
	Sortable map[string]Comparator[E]
	// Filter 过滤谓词；nil 过滤条件不会调用
	Filter func(e E, f *F) bool
	// CreatedAt 默认排序依据（created_at desc）
	CreatedAt func(e E) time.Time
	// Clone 存取时复制聚合，避免调用方与仓储共享可变状态；副本不携带事件
	Clone func(e E) E
}

// Repository 内存仓储
type Repository[E entity.IAggregateRoot, F any] struct {
	cfg   Config[E, F]
	mu    sync.RWMutex
	items map[string]E
	order []string
}

// New 创建内存仓储
func New[E entity.IAggregateRoot, F any](cfg Config[E, F]) *Repository[E, F] {
	if cfg.Clone == nil {
		cfg.Clone = func(e E) E { return e }
	}
	return &Repository[E, F]{cfg: cfg, items: make(map[string]E)}
}

// SortableFields 可排序字段
func (r *Repository[E, F]) SortableFields() []string {
	out := make([]string, 0, len(r.cfg.Sortable))
	for k := range r.cfg.Sortable {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Insert 新增聚合并登记到工作单元
func (r *Repository[E, F]) Insert(ctx context.Context, e E) error {
	r.mu.Lock()
	r.put(e)
	r.mu.Unlock()
	uow.Register(ctx, e)
	return nil
}

// BulkInsert 批量新增
func (r *Repository[E, F]) BulkInsert(ctx context.Context, es []E) error {
	r.mu.Lock()
	for _, e := range es {
		r.put(e)
	}
	r.mu.Unlock()
	for _, e := range es {
		uow.Register(ctx, e)
	}
	return nil
}

func (r *Repository[E, F]) put(e E) {
	id := e.AggregateID()
	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = r.cfg.Clone(e)
}

// Update 更新已存在的聚合
func (r *Repository[E, F]) Update(ctx context.Context, e E) error {
	r.mu.Lock()
	if _, ok := r.items[e.AggregateID()]; !ok {
		r.mu.Unlock()
		return domain.NewNotFoundError(r.cfg.Entity, e.AggregateID())
	}
	r.put(e)
	r.mu.Unlock()
	uow.Register(ctx, e)
	return nil
}

// Delete 删除聚合
//
// 被删除的聚合（若其已产生删除事件）需要调用方自行登记到工作单元。
func (r *Repository[E, F]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.NewNotFoundError(r.cfg.Entity, id)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

// FindByID 按 ID 查找，不存在时返回 *domain.NotFoundError
func (r *Repository[E, F]) FindByID(ctx context.Context, id string) (E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		var zero E
		return zero, domain.NewNotFoundError(r.cfg.Entity, id)
	}
	return r.cfg.Clone(e), nil
}

// FindByIDs 返回存在的聚合，按 ids 顺序
func (r *Repository[E, F]) FindByIDs(ctx context.Context, ids []string) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.items[id]; ok {
			out = append(out, r.cfg.Clone(e))
		}
	}
	return out, nil
}

// ExistsByIDs 区分存在与不存在的 ID
func (r *Repository[E, F]) ExistsByIDs(ctx context.Context, ids []string) (exists, notExists []string, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			exists = append(exists, id)
		} else {
			notExists = append(notExists, id)
		}
	}
	return exists, notExists, nil
}

// FindAll 按插入顺序返回全部聚合
func (r *Repository[E, F]) FindAll(ctx context.Context) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]E, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cfg.Clone(r.items[id]))
	}
	return out, nil
}

// Search 过滤 -> 排序 -> 计数 -> 分页
//
// 未指定或不可排序的字段按 created_at 降序。
func (r *Repository[E, F]) Search(ctx context.Context, params search.Params[F]) (search.Result[E], error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return search.Result[E]{}, err
	}

	filtered := all
	if f := params.Filter(); f != nil && r.cfg.Filter != nil {
		filtered = make([]E, 0, len(all))
		for _, e := range all {
			if r.cfg.Filter(e, f) {
				filtered = append(filtered, e)
			}
		}
	}

	r.applySort(filtered, params.Sort(), params.SortDir())

	total := len(filtered)
	start := min(params.Offset(), total)
	end := min(start+params.Limit(), total)
	return search.NewResult(filtered[start:end], total, params.Page(), params.PerPage()), nil
}

func (r *Repository[E, F]) applySort(items []E, field string, dir search.SortDirection) {
	compare, ok := r.cfg.Sortable[field]
	if !ok || !search.IsSafeFieldName(field) {
		if r.cfg.CreatedAt == nil {
			return
		}
		slices.SortStableFunc(items, func(a, b E) int {
			return r.cfg.CreatedAt(b).Compare(r.cfg.CreatedAt(a))
		})
		return
	}
	slices.SortStableFunc(items, func(a, b E) int {
		if dir == search.Asc {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

// CompareString 按字节序比较字符串字段（区分大小写）
func CompareString[E any](get func(E) string) Comparator[E] {
	return func(a, b E) int { return strings.Compare(get(a), get(b)) }
}

// CompareTime 比较时间字段
func CompareTime[E any](get func(E) time.Time) Comparator[E] {
	return func(a, b E) int { return get(a).Compare(get(b)) }
}

// CompareOrdered 比较可排序字段
func CompareOrdered[E any, V cmp.Ordered](get func(E) V) Comparator[E] {
	return func(a, b E) int { return cmp.Compare(get(a), get(b)) }
}
