// Package sync 同步进程内传输
//
// Publish 在调用方 goroutine 内依次执行匹配的处理器，所有失败合并后返回给发布者。
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

var (
	ErrNotRunning     = errors.New("sync transport is not running")
	ErrAlreadyRunning = errors.New("sync transport is already running")
)

// Transport 同步传输
type Transport struct {
	*messaging.Registry
	running atomic.Bool
	logger  logging.Logger
}

var _ messaging.ITransport = (*Transport)(nil)

// New 创建同步传输，需 Start 后才能发布
func New(logger logging.Logger) *Transport {
	return &Transport{
		Registry: messaging.NewRegistry(),
		logger:   logging.OrDefault(logger).WithFields(logging.String("component", "transport.sync")),
	}
}

func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	err := t.Dispatch(ctx, message, func(h messaging.IMessageHandler, err error) {
		t.logger.Warn(ctx, "message handler failed",
			logging.String("message_type", message.GetType()),
			logging.String("handler", h.Type()),
			logging.Error(err))
	})
	if err != nil {
		return fmt.Errorf("handle %s: %w", message.GetType(), err)
	}
	return nil
}

// PublishAll 顺序发布，遇错即停
func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, m := range messages {
		if err := t.Publish(ctx, m); err != nil {
			return fmt.Errorf("message %s: %w", m.GetID(), err)
		}
	}
	return nil
}

func (t *Transport) Start(context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return nil
}

func (t *Transport) Close() error {
	if !t.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}
	return nil
}

func (t *Transport) Stats() messaging.TransportStats {
	return t.Snapshot(t.running.Load())
}
