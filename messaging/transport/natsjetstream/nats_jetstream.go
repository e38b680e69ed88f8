// Package natsjetstream 基于 NATS JetStream 的消息传输
//
// 所有消息类型写入同一个流，主题为 SubjectPrefix + 类型；每个类型一个持久化队列消费者。
package natsjetstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/patterns/retry"
)

// Config JetStream 传输配置
type Config struct {
	URL           string
	Stream        string
	SubjectPrefix string
	DurablePrefix string
	AckWait       time.Duration
	MaxAckPending int
	// Retention workqueue|limits|interest，默认 workqueue
	Retention string
	Logger    logging.Logger
	// Conn 外部注入的连接，传输不负责关闭
	Conn *nats.Conn
	// ConnectRetry 建立连接的重试策略
	ConnectRetry retry.Config
}

func (c *Config) applyDefaults() {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.Stream == "" {
		c.Stream = "CATALOG"
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "catalog."
	}
	if c.DurablePrefix == "" {
		c.DurablePrefix = "catalog-admin-"
	}
	if c.AckWait <= 0 {
		c.AckWait = 30 * time.Second
	}
	if c.MaxAckPending <= 0 {
		c.MaxAckPending = 1024
	}
	if c.ConnectRetry.MaxAttempts <= 0 {
		c.ConnectRetry = retry.Config{
			MaxAttempts:   5,
			InitialDelay:  200 * time.Millisecond,
			BackoffFactor: 2,
			MaxDelay:      3 * time.Second,
		}
	}
}

// Transport JetStream 传输
type Transport struct {
	cfg      Config
	logger   logging.Logger
	conn     *nats.Conn
	js       nats.JetStreamContext
	ownsConn bool

	handlers map[string][]messaging.IMessageHandler
	subs     map[string]*nats.Subscription

	mu      sync.RWMutex
	running bool
}

// NewTransport 创建传输，连接在 Start 时建立
func NewTransport(cfg Config) *Transport {
	cfg.applyDefaults()
	return &Transport{
		cfg:      cfg,
		logger:   logging.OrDefault(cfg.Logger).WithFields(logging.String("component", "transport.nats")),
		handlers: make(map[string][]messaging.IMessageHandler),
		subs:     make(map[string]*nats.Subscription),
	}
}

// Publish 发布消息，消息ID作为 JetStream 去重标识
func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	t.mu.RLock()
	js, running := t.js, t.running
	t.mu.RUnlock()
	if !running || js == nil {
		return errors.New("nats transport not running")
	}
	data, err := messaging.Encode(message)
	if err != nil {
		return err
	}
	subject := t.subjectName(message.GetType())
	if _, err := js.Publish(subject, data, nats.Context(ctx), nats.MsgId(message.GetID())); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// PublishAll 逐条发布，遇错即停
func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, msg := range messages {
		if err := t.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe 注册处理器；运行中会立即建立订阅
func (t *Transport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[messageType] = append(t.handlers[messageType], handler)
	if t.running && messageType != messaging.WildcardType {
		return t.subscribeLocked(messageType)
	}
	return nil
}

// Unsubscribe 移除处理器；类型下无处理器时排空订阅
func (t *Transport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	handlers, found := messaging.RemoveHandler(t.handlers[messageType], handler)
	if !found {
		return fmt.Errorf("%w for message type %s", messaging.ErrHandlerNotFound, messageType)
	}
	t.handlers[messageType] = handlers
	if len(handlers) == 0 {
		if sub, ok := t.subs[messageType]; ok {
			_ = sub.Drain()
			delete(t.subs, messageType)
		}
	}
	return nil
}

// Start 建立连接、确保流存在并为已有订阅建立消费者
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("nats transport already running")
	}
	connect := func(context.Context) error { return t.connectLocked() }
	cfg := t.cfg.ConnectRetry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		t.logger.Warn(ctx, "nats connect failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
	}
	if err := retry.Do(ctx, connect, cfg); err != nil {
		return err
	}
	if err := t.ensureStream(); err != nil {
		return err
	}
	for mt := range t.handlers {
		if mt == messaging.WildcardType {
			continue
		}
		if err := t.subscribeLocked(mt); err != nil {
			return err
		}
	}
	t.running = true
	return nil
}

// Close 排空订阅；自建连接一并关闭
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	for mt, sub := range t.subs {
		_ = sub.Drain()
		delete(t.subs, mt)
	}
	if t.ownsConn && t.conn != nil {
		t.conn.Close()
	}
	t.conn, t.js = nil, nil
	return nil
}

// Stats 统计信息
func (t *Transport) Stats() messaging.TransportStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := 0
	types := make([]string, 0, len(t.handlers))
	for mt, hs := range t.handlers {
		count += len(hs)
		types = append(types, mt)
	}
	return messaging.TransportStats{Running: t.running, HandlerCount: count, MessageTypes: types}
}

func (t *Transport) connectLocked() error {
	if t.cfg.Conn != nil {
		t.conn, t.ownsConn = t.cfg.Conn, false
	} else {
		conn, err := nats.Connect(t.cfg.URL, nats.Name("catalog-admin"))
		if err != nil {
			return fmt.Errorf("connect nats %s: %w", t.cfg.URL, err)
		}
		t.conn, t.ownsConn = conn, true
	}
	js, err := t.conn.JetStream()
	if err != nil {
		return err
	}
	t.js = js
	return nil
}

func (t *Transport) ensureStream() error {
	_, err := t.js.StreamInfo(t.cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = t.js.AddStream(&nats.StreamConfig{
		Name:              t.cfg.Stream,
		Subjects:          []string{t.cfg.SubjectPrefix + ">"},
		Retention:         retentionPolicy(t.cfg.Retention),
		MaxMsgsPerSubject: -1,
	})
	return err
}

func retentionPolicy(name string) nats.RetentionPolicy {
	switch strings.ToLower(name) {
	case "limits":
		return nats.LimitsPolicy
	case "interest":
		return nats.InterestPolicy
	default:
		return nats.WorkQueuePolicy
	}
}

func (t *Transport) subscribeLocked(messageType string) error {
	if _, exists := t.subs[messageType]; exists {
		return nil
	}
	subject := t.subjectName(messageType)
	durable := t.durableName(messageType)
	sub, err := t.js.QueueSubscribe(subject, durable, t.onMessage,
		nats.ManualAck(),
		nats.Durable(durable),
		nats.AckWait(t.cfg.AckWait),
		nats.MaxAckPending(t.cfg.MaxAckPending))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	t.subs[messageType] = sub
	return nil
}

func (t *Transport) onMessage(msg *nats.Msg) {
	ctx := context.Background()
	decoded, err := messaging.Decode(msg.Data)
	if err != nil {
		t.logger.Warn(ctx, "decode nats message failed", logging.String("subject", msg.Subject), logging.Error(err))
		_ = msg.Term()
		return
	}
	if decoded.Type == "" {
		decoded.Type = strings.TrimPrefix(msg.Subject, t.cfg.SubjectPrefix)
	}
	t.dispatch(ctx, decoded)
	if err := msg.Ack(); err != nil {
		t.logger.Warn(ctx, "nats ack failed", logging.Error(err))
	}
}

func (t *Transport) dispatch(ctx context.Context, message messaging.IMessage) {
	t.mu.RLock()
	handlers := messaging.MatchHandlers(t.handlers, message.GetType())
	t.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handle(ctx, message); err != nil {
			t.logger.Warn(ctx, "message handler failed",
				logging.String("message_type", message.GetType()),
				logging.String("message_id", message.GetID()),
				logging.Error(err))
		}
	}
}

func (t *Transport) subjectName(messageType string) string {
	return t.cfg.SubjectPrefix + messageType
}

// durableName 消费者名不允许包含 "." 等分隔符
func (t *Transport) durableName(messageType string) string {
	r := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")
	return t.cfg.DurablePrefix + r.Replace(messageType)
}
