package uow

import (
	"context"
	"sync/atomic"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
)

// MemoryUnitOfWork 无事务的工作单元，配合内存仓储与测试使用
type MemoryUnitOfWork struct {
	registry
	started atomic.Bool
}

// NewMemoryUnitOfWork 创建内存工作单元
func NewMemoryUnitOfWork() *MemoryUnitOfWork {
	return &MemoryUnitOfWork{}
}

func (u *MemoryUnitOfWork) Start(ctx context.Context) error {
	u.clear()
	u.started.Store(true)
	return nil
}

func (u *MemoryUnitOfWork) Commit(ctx context.Context) error {
	u.clear()
	u.started.Store(false)
	return nil
}

func (u *MemoryUnitOfWork) Rollback(ctx context.Context) error {
	u.clear()
	u.started.Store(false)
	return nil
}

// Transaction 内存实现没有事务句柄
func (u *MemoryUnitOfWork) Transaction() any {
	return nil
}

func (u *MemoryUnitOfWork) AddAggregateRoot(agg entity.IAggregateRoot) {
	u.add(agg)
}

func (u *MemoryUnitOfWork) AggregateRoots() []entity.IAggregateRoot {
	return u.snapshot()
}

func (u *MemoryUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, u IUnitOfWork) error) error {
	if !u.started.Load() {
		if err := u.Start(ctx); err != nil {
			return err
		}
	}
	return fn(NewContext(ctx, u), u)
}

var _ IUnitOfWork = (*MemoryUnitOfWork)(nil)
