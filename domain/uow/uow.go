// Package uow 定义工作单元：一次用例执行的事务边界，以及该次执行中被修改的聚合集合
//
// 工作单元通过 context 传递给仓储：
//
//	ctx = uow.NewContext(ctx, u)
//	repo.Insert(ctx, category) // 仓储内部调用 uow.Register(ctx, category)
//
// gorm 仓储通过 uow.GormDB(ctx, fallback) 取得事务句柄，未处于工作单元中时退回 fallback。
package uow

import (
	"context"
	"sync"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
)

// IUnitOfWork 工作单元接口
type IUnitOfWork interface {
	// Start 开启新的事务范围，并清空已登记的聚合
	Start(ctx context.Context) error

	// Commit 提交，完成后清空登记
	Commit(ctx context.Context) error

	// Rollback 回滚，完成后清空登记
	Rollback(ctx context.Context) error

	// Transaction 不透明的事务句柄；内存实现返回 nil
	Transaction() any

	// AddAggregateRoot 登记聚合（按实例去重）
	AddAggregateRoot(agg entity.IAggregateRoot)

	// AggregateRoots 已登记聚合的快照，按登记顺序
	AggregateRoots() []entity.IAggregateRoot

	// Execute 未开启时先 Start，再以携带本工作单元的 ctx 调用 fn；不提交也不回滚
	Execute(ctx context.Context, fn func(ctx context.Context, u IUnitOfWork) error) error
}

type contextKey string

const contextKeyUnitOfWork contextKey = "unit_of_work"

// NewContext 返回携带工作单元的 context
func NewContext(ctx context.Context, u IUnitOfWork) context.Context {
	return context.WithValue(ctx, contextKeyUnitOfWork, u)
}

// FromContext 取出 context 中的工作单元
func FromContext(ctx context.Context) (IUnitOfWork, bool) {
	if ctx == nil {
		return nil, false
	}
	u, ok := ctx.Value(contextKeyUnitOfWork).(IUnitOfWork)
	return u, ok && u != nil
}

// Register 把聚合登记到 context 中的工作单元；不在工作单元中时忽略
func Register(ctx context.Context, aggs ...entity.IAggregateRoot) {
	u, ok := FromContext(ctx)
	if !ok {
		return
	}
	for _, agg := range aggs {
		u.AddAggregateRoot(agg)
	}
}

// registry 聚合登记表，按实例去重并保持登记顺序
//
// 聚合必须以指针形式登记。
type registry struct {
	mu    sync.Mutex
	order []entity.IAggregateRoot
	seen  map[entity.IAggregateRoot]struct{}
}

func (r *registry) add(agg entity.IAggregateRoot) {
	if agg == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = make(map[entity.IAggregateRoot]struct{})
	}
	if _, ok := r.seen[agg]; ok {
		return
	}
	r.seen[agg] = struct{}{}
	r.order = append(r.order, agg)
}

func (r *registry) snapshot() []entity.IAggregateRoot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.IAggregateRoot(nil), r.order...)
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.seen = nil
}
