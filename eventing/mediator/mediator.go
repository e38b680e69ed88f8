// Package mediator 提供进程内的领域事件/集成事件分发器
//
// 领域事件处理器在事务提交前同步执行，可参与同一事务；
// 集成事件处理器在提交后执行，通常把事件转发到外部消息通道。
package mediator

import (
	"context"
	"sync"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
)

// IDomainEventHandler 领域事件处理器
type IDomainEventHandler interface {
	HandleDomainEvent(ctx context.Context, evt eventing.IDomainEvent) error
}

// DomainEventHandlerFunc 函数形式的领域事件处理器
type DomainEventHandlerFunc func(ctx context.Context, evt eventing.IDomainEvent) error

func (f DomainEventHandlerFunc) HandleDomainEvent(ctx context.Context, evt eventing.IDomainEvent) error {
	return f(ctx, evt)
}

// IIntegrationEventHandler 集成事件处理器
type IIntegrationEventHandler interface {
	HandleIntegrationEvent(ctx context.Context, evt eventing.IIntegrationEvent) error
}

// IntegrationEventHandlerFunc 函数形式的集成事件处理器
type IntegrationEventHandlerFunc func(ctx context.Context, evt eventing.IIntegrationEvent) error

func (f IntegrationEventHandlerFunc) HandleIntegrationEvent(ctx context.Context, evt eventing.IIntegrationEvent) error {
	return f(ctx, evt)
}

// IDomainEventMediator 事件分发器接口
type IDomainEventMediator interface {
	Register(eventType string, handler IDomainEventHandler)
	RegisterIntegration(eventName string, handler IIntegrationEventHandler)
	Publish(ctx context.Context, agg entity.IAggregateRoot) error
	PublishIntegrationEvents(ctx context.Context, agg entity.IAggregateRoot) error
}

// DomainEventMediator 默认实现
//
// 同一事件的处理器按注册顺序依次执行，不做并行扇出，也不施加超时；
// 调用方通过 ctx 控制取消。
type DomainEventMediator struct {
	mu          sync.RWMutex
	handlers    map[string][]IDomainEventHandler
	integration map[string][]IIntegrationEventHandler
	logger      logging.Logger
}

// Option 分发器选项
type Option func(*DomainEventMediator)

// WithLogger 设置日志器
func WithLogger(l logging.Logger) Option {
	return func(m *DomainEventMediator) {
		if l != nil {
			m.logger = l
		}
	}
}

// New 创建分发器
func New(opts ...Option) *DomainEventMediator {
	m := &DomainEventMediator{
		handlers:    make(map[string][]IDomainEventHandler),
		integration: make(map[string][]IIntegrationEventHandler),
		logger:      logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.WithFields(logging.String("component", "mediator"))
	return m
}

// Register 订阅领域事件类型
func (m *DomainEventMediator) Register(eventType string, handler IDomainEventHandler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// RegisterFunc Register 的函数形式
func (m *DomainEventMediator) RegisterFunc(eventType string, fn func(ctx context.Context, evt eventing.IDomainEvent) error) {
	m.Register(eventType, DomainEventHandlerFunc(fn))
}

// RegisterIntegration 订阅集成事件名
func (m *DomainEventMediator) RegisterIntegration(eventName string, handler IIntegrationEventHandler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integration[eventName] = append(m.integration[eventName], handler)
}

// RegisterIntegrationFunc RegisterIntegration 的函数形式
func (m *DomainEventMediator) RegisterIntegrationFunc(eventName string, fn func(ctx context.Context, evt eventing.IIntegrationEvent) error) {
	m.RegisterIntegration(eventName, IntegrationEventHandlerFunc(fn))
}

// Publish 分发聚合上未分发的领域事件
//
// 每个事件先标记为已分发再调用处理器：处理器失败或重复调用 Publish 都不会导致重复投递。
// 第一个处理器错误会中止剩余事件的分发并原样返回。
func (m *DomainEventMediator) Publish(ctx context.Context, agg entity.IAggregateRoot) error {
	if agg == nil {
		return nil
	}
	for _, evt := range agg.UndispatchedEvents() {
		agg.MarkEventAsDispatched(evt)
		for _, h := range m.domainHandlers(evt.EventType()) {
			if err := h.HandleDomainEvent(ctx, evt); err != nil {
				m.logger.Warn(ctx, "domain event handler failed",
					logging.String("event_type", evt.EventType()),
					logging.String("event_id", evt.EventID()),
					logging.String("aggregate_id", agg.AggregateID()),
					logging.Error(err))
				return err
			}
		}
	}
	return nil
}

// PublishIntegrationEvents 分发聚合上可投影为集成事件的事件
//
// 遍历聚合保留的全部事件；未实现 eventing.IIntegrationEventSource 的事件仅在进程内可见，直接跳过。
func (m *DomainEventMediator) PublishIntegrationEvents(ctx context.Context, agg entity.IAggregateRoot) error {
	if agg == nil {
		return nil
	}
	for _, evt := range agg.Events() {
		src, ok := evt.(eventing.IIntegrationEventSource)
		if !ok {
			continue
		}
		ie := src.IntegrationEvent()
		if ie == nil {
			continue
		}
		for _, h := range m.integrationHandlers(ie.EventName()) {
			if err := h.HandleIntegrationEvent(ctx, ie); err != nil {
				m.logger.Warn(ctx, "integration event handler failed",
					logging.String("event_name", ie.EventName()),
					logging.String("aggregate_id", agg.AggregateID()),
					logging.Error(err))
				return err
			}
		}
	}
	return nil
}

func (m *DomainEventMediator) domainHandlers(eventType string) []IDomainEventHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IDomainEventHandler(nil), m.handlers[eventType]...)
}

func (m *DomainEventMediator) integrationHandlers(eventName string) []IIntegrationEventHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]IIntegrationEventHandler(nil), m.integration[eventName]...)
}

var _ IDomainEventMediator = (*DomainEventMediator)(nil)
