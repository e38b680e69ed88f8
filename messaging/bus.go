package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// HandlerFunc 发布链上的一环
type HandlerFunc func(ctx context.Context, message IMessage) error

// IMiddleware 发布侧中间件
type IMiddleware interface {
	Handle(ctx context.Context, message IMessage, next HandlerFunc) error
	Name() string
}

// IMessageBus 消息总线
type IMessageBus interface {
	Subscribe(ctx context.Context, messageType string, handler IMessageHandler) error
	Unsubscribe(ctx context.Context, messageType string, handler IMessageHandler) error
	Publish(ctx context.Context, message IMessage) error
	PublishAll(ctx context.Context, messages []IMessage) error
	Use(middleware IMiddleware)
}

// MessageBus 先按注册顺序执行中间件，再交给传输
type MessageBus struct {
	transport ITransport

	mu    sync.RWMutex
	chain []IMiddleware
}

var _ IMessageBus = (*MessageBus)(nil)

// NewMessageBus 创建总线
func NewMessageBus(transport ITransport) *MessageBus {
	return &MessageBus{transport: transport}
}

// Use 追加中间件，先注册的在外层
func (b *MessageBus) Use(middleware IMiddleware) {
	b.mu.Lock()
	b.chain = append(b.chain, middleware)
	b.mu.Unlock()
}

func (b *MessageBus) Subscribe(_ context.Context, messageType string, handler IMessageHandler) error {
	return b.transport.Subscribe(messageType, handler)
}

func (b *MessageBus) Unsubscribe(_ context.Context, messageType string, handler IMessageHandler) error {
	return b.transport.Unsubscribe(messageType, handler)
}

// Publish 经中间件后发布单条消息
func (b *MessageBus) Publish(ctx context.Context, message IMessage) error {
	if message == nil {
		return errors.New("nil message")
	}
	return b.wrap(b.transport.Publish)(ctx, message)
}

// PublishAll 每条消息单独经过中间件，最后一次性交给传输
func (b *MessageBus) PublishAll(ctx context.Context, messages []IMessage) error {
	batch := make([]IMessage, 0, len(messages))
	collect := b.wrap(func(_ context.Context, m IMessage) error {
		batch = append(batch, m)
		return nil
	})
	for _, m := range messages {
		if err := collect(ctx, m); err != nil {
			return fmt.Errorf("publish message %s: %w", m.GetID(), err)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := b.transport.PublishAll(ctx, batch); err != nil {
		return fmt.Errorf("publish batch of %d: %w", len(batch), err)
	}
	return nil
}

func (b *MessageBus) Start(ctx context.Context) error { return b.transport.Start(ctx) }
func (b *MessageBus) Close() error                    { return b.transport.Close() }
func (b *MessageBus) Stats() TransportStats           { return b.transport.Stats() }

func (b *MessageBus) wrap(final HandlerFunc) HandlerFunc {
	b.mu.RLock()
	chain := b.chain
	b.mu.RUnlock()

	next := final
	for i := len(chain) - 1; i >= 0; i-- {
		mw, inner := chain[i], next
		next = func(ctx context.Context, m IMessage) error {
			return mw.Handle(ctx, m, inner)
		}
	}
	return next
}
