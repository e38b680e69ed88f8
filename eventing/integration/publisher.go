// Package integration 把提交后的集成事件转发到消息总线
package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/patterns/retry"
)

// Publisher 集成事件处理器，把事件包装为消息后发布到总线
type Publisher struct {
	bus    messaging.IMessageBus
	logger logging.Logger
	retry  retry.Config
}

// Option 发布器选项
type Option func(*Publisher)

// WithRetry 覆盖发布失败时的重试策略
func WithRetry(cfg retry.Config) Option {
	return func(p *Publisher) { p.retry = cfg }
}

var _ mediator.IIntegrationEventHandler = (*Publisher)(nil)

// NewPublisher 创建发布器
func NewPublisher(bus messaging.IMessageBus, logger logging.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		bus:    bus,
		logger: logging.OrDefault(logger).WithFields(logging.String("component", "integration.publisher")),
		retry:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleIntegrationEvent 实现 mediator.IIntegrationEventHandler
func (p *Publisher) HandleIntegrationEvent(ctx context.Context, evt eventing.IIntegrationEvent) error {
	msg := messaging.FromIntegrationEvent(evt)
	cfg := p.retry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		p.logger.Warn(ctx, "integration event publish failed, retrying",
			logging.String("event_name", evt.EventName()),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
	}
	// 消息 ID 不变，支持去重的传输（JetStream）不会重复投递
	publish := func(ctx context.Context) error { return p.bus.Publish(ctx, msg) }
	if err := retry.Do(ctx, publish, cfg); err != nil {
		return fmt.Errorf("publish integration event %s: %w", evt.EventName(), err)
	}
	p.logger.Debug(ctx, "integration event published",
		logging.String("event_name", evt.EventName()),
		logging.String("message_id", msg.ID))
	return nil
}

// Bind 为给定的集成事件名注册发布器
func Bind(m mediator.IDomainEventMediator, p *Publisher, eventNames ...string) {
	for _, name := range eventNames {
		m.RegisterIntegration(name, p)
	}
}
