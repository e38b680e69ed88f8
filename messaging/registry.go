package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrHandlerNotFound 取消订阅时处理器不存在
var ErrHandlerNotFound = errors.New("handler not found")

// Registry 并发安全的 类型 → 处理器 表，进程内传输共用
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]IMessageHandler
}

// NewRegistry 创建空表
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]IMessageHandler)}
}

// Subscribe 追加处理器；同一处理器可重复订阅
func (r *Registry) Subscribe(messageType string, handler IMessageHandler) error {
	if handler == nil {
		return errors.New("nil handler")
	}
	r.mu.Lock()
	r.handlers[messageType] = append(r.handlers[messageType], handler)
	r.mu.Unlock()
	return nil
}

// Unsubscribe 移除一次订阅
func (r *Registry) Unsubscribe(messageType string, handler IMessageHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rest, ok := RemoveHandler(r.handlers[messageType], handler)
	if !ok {
		return fmt.Errorf("%w for message type %s", ErrHandlerNotFound, messageType)
	}
	if len(rest) == 0 {
		delete(r.handlers, messageType)
	} else {
		r.handlers[messageType] = rest
	}
	return nil
}

// Match 精确订阅在前，通配订阅在后
func (r *Registry) Match(messageType string) []IMessageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return MatchHandlers(r.handlers, messageType)
}

// Dispatch 顺序调用所有匹配的处理器，返回全部失败（errors.Join），不因单个失败中断
func (r *Registry) Dispatch(ctx context.Context, message IMessage, onError func(IMessageHandler, error)) error {
	var errs []error
	for _, h := range r.Match(message.GetType()) {
		if err := h.Handle(ctx, message); err != nil {
			if onError != nil {
				onError(h, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot 以给定运行状态生成统计，类型按字典序
func (r *Registry) Snapshot(running bool) TransportStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := TransportStats{Running: running, MessageTypes: make([]string, 0, len(r.handlers))}
	for mt, hs := range r.handlers {
		stats.MessageTypes = append(stats.MessageTypes, mt)
		stats.HandlerCount += len(hs)
	}
	sort.Strings(stats.MessageTypes)
	return stats
}
