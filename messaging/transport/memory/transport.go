// Package memory 内存队列 + worker 池的异步传输
//
// Publish 只负责入队，处理器在后台执行，失败只记日志；单进程部署与开发环境使用。
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

var (
	ErrNotRunning = errors.New("memory transport is not running")
	ErrQueueFull  = errors.New("memory transport queue is full")
)

// Config 队列容量与 worker 数，<=0 取默认值
type Config struct {
	QueueSize int
	Workers   int
	Logger    logging.Logger
}

func (c *Config) applyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 1000
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

// Transport 内存传输，可在 Close 后再次 Start
type Transport struct {
	*messaging.Registry
	cfg    Config
	logger logging.Logger

	mu    sync.RWMutex
	queue chan messaging.IMessage // nil 表示未运行
	wg    sync.WaitGroup
}

var _ messaging.ITransport = (*Transport)(nil)

func New(cfg Config) *Transport {
	cfg.applyDefaults()
	return &Transport{
		Registry: messaging.NewRegistry(),
		cfg:      cfg,
		logger:   logging.OrDefault(cfg.Logger).WithFields(logging.String("component", "transport.memory")),
	}
}

// Publish 入队；队列满时立即返回 ErrQueueFull
func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	return t.PublishAll(ctx, []messaging.IMessage{message})
}

func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.queue == nil {
		return ErrNotRunning
	}
	for _, m := range messages {
		select {
		case t.queue <- m:
		case <-ctx.Done():
			return ctx.Err()
		default:
			return fmt.Errorf("%w (capacity %d)", ErrQueueFull, t.cfg.QueueSize)
		}
	}
	return nil
}

// Start 启动 worker；ctx 取消后 worker 退出，队列中剩余消息不再处理
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.queue != nil {
		return errors.New("memory transport is already running")
	}
	t.queue = make(chan messaging.IMessage, t.cfg.QueueSize)
	for i := 0; i < t.cfg.Workers; i++ {
		t.wg.Add(1)
		go t.work(ctx, t.queue)
	}
	return nil
}

// Close 关闭队列，等待 worker 处理完缓冲消息
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.queue == nil {
		t.mu.Unlock()
		return ErrNotRunning
	}
	close(t.queue)
	t.queue = nil
	t.mu.Unlock()

	t.wg.Wait()
	return nil
}

func (t *Transport) Stats() messaging.TransportStats {
	t.mu.RLock()
	running := t.queue != nil
	t.mu.RUnlock()
	return t.Snapshot(running)
}

func (t *Transport) work(ctx context.Context, queue <-chan messaging.IMessage) {
	defer t.wg.Done()
	for {
		select {
		case m, ok := <-queue:
			if !ok {
				return
			}
			_ = t.Dispatch(ctx, m, func(h messaging.IMessageHandler, err error) {
				t.logger.Warn(ctx, "message handler failed",
					logging.String("message_type", m.GetType()),
					logging.String("message_id", m.GetID()),
					logging.String("handler", h.Type()),
					logging.Error(err))
			})
		case <-ctx.Done():
			return
		}
	}
}
