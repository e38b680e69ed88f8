// Package app 提供应用服务：编排一次用例执行的工作单元、领域事件与集成事件
package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/uow"
	apperrors "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/errors"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

const tracerName = "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/app"

// ApplicationService 单次用例执行的编排器
//
// 状态流转：
//
//	Start -> fn -> Finish（发布领域事件 -> Commit -> 发布集成事件）
//	               \-> Fail（Rollback）
//
// 每个实例只服务一次用例执行；并发执行应各自通过 Factory 创建实例。
type ApplicationService struct {
	uow      uow.IUnitOfWork
	mediator mediator.IDomainEventMediator
	logger   logging.Logger
	tracer   trace.Tracer
	checks   []Check
}

// Check 用例执行前的前置检查，失败时不开启工作单元
type Check func(ctx context.Context) error

// Option 应用服务选项
type Option func(*options)

type options struct {
	logger         logging.Logger
	tracerProvider trace.TracerProvider
	checks         []Check
}

// WithLogger 设置日志器
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider 设置 TracerProvider，默认使用 otel 全局 provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithCheck 追加前置检查，如消息总线是否已启动
func WithCheck(c Check) Option {
	return func(o *options) { o.checks = append(o.checks, c) }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrDefault(o.logger)
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	return o
}

// NewApplicationService 创建应用服务
func NewApplicationService(u uow.IUnitOfWork, m mediator.IDomainEventMediator, opts ...Option) *ApplicationService {
	o := buildOptions(opts)
	return newApplicationService(u, m, o)
}

func newApplicationService(u uow.IUnitOfWork, m mediator.IDomainEventMediator, o options) *ApplicationService {
	return &ApplicationService{
		uow:      u,
		mediator: m,
		logger:   o.logger.WithFields(logging.String("component", "application_service")),
		tracer:   o.tracerProvider.Tracer(tracerName),
		checks:   o.checks,
	}
}

// UnitOfWork 返回本次执行使用的工作单元
func (s *ApplicationService) UnitOfWork() uow.IUnitOfWork {
	return s.uow
}

// Start 开启工作单元
func (s *ApplicationService) Start(ctx context.Context) error {
	return s.uow.Start(ctx)
}

// Finish 按登记顺序发布领域事件，提交，再发布集成事件
//
// 领域事件在提交前发布，处理器仍可影响本次持久化的内容。
func (s *ApplicationService) Finish(ctx context.Context) error {
	_, err := s.finish(ctx)
	return err
}

// finish 返回是否已提交；提交后的集成事件错误不再触发回滚
func (s *ApplicationService) finish(ctx context.Context) (bool, error) {
	aggregates := s.uow.AggregateRoots()
	for _, agg := range aggregates {
		if err := s.mediator.Publish(ctx, agg); err != nil {
			return false, err
		}
	}
	if err := s.uow.Commit(ctx); err != nil {
		return false, err
	}
	for _, agg := range aggregates {
		if err := s.mediator.PublishIntegrationEvents(ctx, agg); err != nil {
			s.logger.Error(ctx, "publish integration events after commit failed",
				logging.String("aggregate_id", agg.AggregateID()),
				logging.Error(err))
			return true, err
		}
	}
	return true, nil
}

// Fail 回滚工作单元
func (s *ApplicationService) Fail(ctx context.Context) error {
	return s.uow.Rollback(ctx)
}

// Run 在工作单元内执行 fn
//
// fn 收到的 ctx 携带工作单元，仓储写入时据此登记聚合并参与事务。
// fn 或领域事件发布失败时回滚，并原样返回原始错误；回滚错误只记录日志。
func (s *ApplicationService) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "ApplicationService.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	for _, check := range s.checks {
		if err = check(ctx); err != nil {
			return err
		}
	}
	if err = s.Start(ctx); err != nil {
		return err
	}
	ctx = uow.NewContext(ctx, s.uow)

	if err = fn(ctx); err != nil {
		s.fail(ctx, err)
		return err
	}

	span.SetAttributes(attribute.Int("uow.aggregates", len(s.uow.AggregateRoots())))
	committed, err := s.finish(ctx)
	if err != nil && !committed {
		s.fail(ctx, err)
	}
	if committed {
		span.AddEvent("committed")
	}
	return err
}

func (s *ApplicationService) fail(ctx context.Context, cause error) {
	s.logger.Debug(ctx, "use case failed, rolling back",
		logging.String("code", string(apperrors.CodeOf(cause))),
		logging.Error(cause))
	if rbErr := s.Fail(ctx); rbErr != nil {
		s.logger.Error(ctx, "rollback failed",
			logging.Error(rbErr),
			logging.String("cause", cause.Error()))
	}
}

// RunWithResult Run 的带返回值形式
func RunWithResult[T any](ctx context.Context, s *ApplicationService, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := s.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
