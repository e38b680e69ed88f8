package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
)

// Factory 为每次用例执行创建独立的工作单元与应用服务
type Factory struct {
	newUnitOfWork func() uow.IUnitOfWork
	mediator      mediator.IDomainEventMediator
	opts          options
}

// NewFactory 创建工厂
func NewFactory(newUnitOfWork func() uow.IUnitOfWork, m mediator.IDomainEventMediator, opts ...Option) *Factory {
	return &Factory{newUnitOfWork: newUnitOfWork, mediator: m, opts: buildOptions(opts)}
}

// NewMemoryFactory 使用内存工作单元的工厂（测试与内存仓储）
func NewMemoryFactory(m mediator.IDomainEventMediator, opts ...Option) *Factory {
	return NewFactory(func() uow.IUnitOfWork { return uow.NewMemoryUnitOfWork() }, m, opts...)
}

// NewGormFactory 使用 gorm 事务工作单元的工厂
func NewGormFactory(db *gorm.DB, m mediator.IDomainEventMediator, opts ...Option) *Factory {
	f := &Factory{mediator: m, opts: buildOptions(opts)}
	f.newUnitOfWork = func() uow.IUnitOfWork { return uow.NewGormUnitOfWork(db, f.opts.logger) }
	return f
}

// New 创建一次性的应用服务
func (f *Factory) New() *ApplicationService {
	return newApplicationService(f.newUnitOfWork(), f.mediator, f.opts)
}

// Mediator 返回共享的事件分发器
func (f *Factory) Mediator() mediator.IDomainEventMediator {
	return f.mediator
}

// Run 以新的应用服务执行 fn
func (f *Factory) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return f.New().Run(ctx, fn)
}

// Execute 以新的应用服务执行 fn 并返回结果
func Execute[T any](ctx context.Context, f *Factory, fn func(ctx context.Context) (T, error)) (T, error) {
	return RunWithResult(ctx, f.New(), fn)
}
