// Package redisstreams 基于 Redis Streams 消费组的消息传输
//
// 每个消息类型对应一个流（StreamPrefix + 类型），订阅者以消费组读取并逐条确认。
package redisstreams

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

// 流条目字段名
const (
	fieldID        = "id"
	fieldType      = "type"
	fieldTimestamp = "timestamp"
	fieldPayload   = "payload"
	fieldMetadata  = "metadata"
)

type client interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Type(ctx context.Context, key string) *redis.StatusCmd
	Close() error
}

// Config Redis Streams 传输配置
type Config struct {
	// Client 外部注入的客户端；为 nil 时按 Addr 等字段创建并由传输负责关闭
	Client       redis.UniversalClient
	Addr         string
	Username     string
	Password     string
	DB           int
	StreamPrefix string
	GroupName    string
	ConsumerName string
	BlockTimeout time.Duration
	ReadCount    int64
	// MaxLen 流的近似最大长度，0 表示不裁剪
	MaxLen int64
	Logger logging.Logger

	MinReadBackoff time.Duration
	MaxReadBackoff time.Duration
}

func (c *Config) applyDefaults() {
	if c.StreamPrefix == "" {
		c.StreamPrefix = "catalog:"
	}
	if c.GroupName == "" {
		c.GroupName = "catalog-admin"
	}
	if c.ConsumerName == "" {
		c.ConsumerName = "consumer-" + uuid.NewString()
	}
	if c.BlockTimeout <= 0 {
		c.BlockTimeout = 5 * time.Second
	}
	if c.ReadCount <= 0 {
		c.ReadCount = 10
	}
	if c.MinReadBackoff <= 0 {
		c.MinReadBackoff = 100 * time.Millisecond
	}
	if c.MaxReadBackoff <= 0 {
		c.MaxReadBackoff = 5 * time.Second
	}
}

// Transport Redis Streams 传输
type Transport struct {
	cfg       Config
	client    client
	ownClient bool
	logger    logging.Logger

	handlers map[string][]messaging.IMessageHandler
	readers  map[string]bool

	mu      sync.RWMutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTransport 创建传输
func NewTransport(cfg Config) (*Transport, error) {
	cfg.applyDefaults()

	var cl client
	own := false
	if cfg.Client != nil {
		cl = cfg.Client
	} else {
		if cfg.Addr == "" {
			return nil, errors.New("redis address not configured")
		}
		cl = redis.NewClient(&redis.Options{Addr: cfg.Addr, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB})
		own = true
	}

	return &Transport{
		cfg:       cfg,
		client:    cl,
		ownClient: own,
		logger:    logging.OrDefault(cfg.Logger).WithFields(logging.String("component", "transport.redisstreams")),
		handlers:  make(map[string][]messaging.IMessageHandler),
		readers:   make(map[string]bool),
	}, nil
}

// Publish 写入消息类型对应的流
func (t *Transport) Publish(ctx context.Context, message messaging.IMessage) error {
	values, err := encodeEntry(message)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{Stream: t.streamName(message.GetType()), Values: values}
	if t.cfg.MaxLen > 0 {
		args.MaxLen = t.cfg.MaxLen
		args.Approx = true
	}
	if err := t.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	// 新类型的流刚出现，通配订阅需要为它补一个读取循环
	t.mu.Lock()
	if t.running && t.hasWildcardLocked() {
		t.startReaderLocked(message.GetType())
	}
	t.mu.Unlock()
	return nil
}

// PublishAll 逐条写入，遇错即停
func (t *Transport) PublishAll(ctx context.Context, messages []messaging.IMessage) error {
	for _, msg := range messages {
		if err := t.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe 注册处理器；运行中订阅新类型会立即启动读取
func (t *Transport) Subscribe(messageType string, handler messaging.IMessageHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[messageType] = append(t.handlers[messageType], handler)
	if !t.running {
		return nil
	}
	if messageType == messaging.WildcardType {
		t.startDiscoveredLocked(t.ctx)
	} else {
		t.startReaderLocked(messageType)
	}
	return nil
}

// Unsubscribe 移除处理器，未找到时返回错误
func (t *Transport) Unsubscribe(messageType string, handler messaging.IMessageHandler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	handlers, found := messaging.RemoveHandler(t.handlers[messageType], handler)
	if !found {
		return fmt.Errorf("%w for message type %s", messaging.ErrHandlerNotFound, messageType)
	}
	t.handlers[messageType] = handlers
	return nil
}

// Start 为每个已订阅的具体类型启动读取循环
//
// 存在通配订阅时，还会读取前缀下所有已存在的流；运行期间本传输发布到的新类型也会补上读取。
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("redis streams transport already running")
	}
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.readers = make(map[string]bool)
	for mt := range t.handlers {
		if mt == messaging.WildcardType {
			continue
		}
		t.startReaderLocked(mt)
	}
	if t.hasWildcardLocked() {
		t.startDiscoveredLocked(t.ctx)
	}
	t.running = true
	return nil
}

// Close 停止读取循环；自建的客户端一并关闭
func (t *Transport) Close() error {
	t.mu.Lock()
	cancel := t.cancel
	wasRunning := t.running
	t.running = false
	t.mu.Unlock()

	if wasRunning && cancel != nil {
		cancel()
		t.wg.Wait()
	}
	if t.ownClient {
		return t.client.Close()
	}
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

func (t *Transport) hasWildcardLocked() bool {
	return len(t.handlers[messaging.WildcardType]) > 0
}

// startDiscoveredLocked 为前缀下已存在的每个流启动读取；发现失败只记日志
func (t *Transport) startDiscoveredLocked(ctx context.Context) {
	types, err := t.discoverTypes(ctx)
	if err != nil {
		t.logger.Warn(ctx, "discover streams failed", logging.Error(err))
	}
	for _, mt := range types {
		t.startReaderLocked(mt)
	}
}

// discoverTypes 扫描 StreamPrefix 下类型为 stream 的键，返回对应的消息类型
func (t *Transport) discoverTypes(ctx context.Context) ([]string, error) {
	var (
		types  []string
		cursor uint64
	)
	for {
		keys, next, err := t.client.Scan(ctx, cursor, t.cfg.StreamPrefix+"*", 100).Result()
		if err != nil {
			return types, fmt.Errorf("scan %s*: %w", t.cfg.StreamPrefix, err)
		}
		for _, key := range keys {
			kind, err := t.client.Type(ctx, key).Result()
			if err != nil {
				return types, fmt.Errorf("type %s: %w", key, err)
			}
			if kind == "stream" {
				types = append(types, strings.TrimPrefix(key, t.cfg.StreamPrefix))
			}
		}
		if next == 0 {
			return types, nil
		}
		cursor = next
	}
}

func (t *Transport) startReaderLocked(messageType string) {
	if t.readers[messageType] {
		return
	}
	t.readers[messageType] = true
	t.wg.Add(1)
	go t.readLoop(t.ctx, messageType)
}

func (t *Transport) readLoop(ctx context.Context, messageType string) {
	defer t.wg.Done()
	stream := t.streamName(messageType)
	if err := t.ensureGroup(ctx, stream); err != nil {
		t.logger.Warn(ctx, "ensure consumer group failed", logging.String("stream", stream), logging.Error(err))
	}
	args := &redis.XReadGroupArgs{
		Group:    t.cfg.GroupName,
		Consumer: t.cfg.ConsumerName,
		Streams:  []string{stream, ">"},
		Count:    t.cfg.ReadCount,
		Block:    t.cfg.BlockTimeout,
	}
	backoff := t.cfg.MinReadBackoff
	for ctx.Err() == nil {
		res, err := t.client.XReadGroup(ctx, args).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			t.logger.Warn(ctx, "xreadgroup failed",
				logging.String("stream", stream), logging.Duration("backoff", backoff), logging.Error(err))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff = min(backoff*2, t.cfg.MaxReadBackoff)
			continue
		}
		backoff = t.cfg.MinReadBackoff
		for _, sr := range res {
			for _, entry := range sr.Messages {
				t.consume(ctx, sr.Stream, entry)
			}
		}
	}
}

func (t *Transport) consume(ctx context.Context, stream string, entry redis.XMessage) {
	msg, err := decodeEntry(entry)
	if err != nil {
		t.logger.Warn(ctx, "decode stream entry failed",
			logging.String("stream", stream), logging.String("entry_id", entry.ID), logging.Error(err))
	} else {
		t.dispatch(ctx, msg)
	}
	if err := t.client.XAck(ctx, stream, t.cfg.GroupName, entry.ID).Err(); err != nil {
		t.logger.Warn(ctx, "xack failed", logging.String("entry_id", entry.ID), logging.Error(err))
	}
}

func (t *Transport) ensureGroup(ctx context.Context, stream string) error {
	err := t.client.XGroupCreateMkStream(ctx, stream, t.cfg.GroupName, "0").Err()
	if err == nil || strings.Contains(strings.ToUpper(err.Error()), "BUSYGROUP") {
		return nil
	}
	return err
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

func (t *Transport) streamName(messageType string) string {
	return t.cfg.StreamPrefix + messageType
}

func encodeEntry(msg messaging.IMessage) (map[string]any, error) {
	env, err := messaging.ToEnvelope(msg)
	if err != nil {
		return nil, err
	}
	metadata, err := messaging.EncodeMetadata(env.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		fieldID:        env.ID,
		fieldType:      env.Type,
		fieldTimestamp: env.Timestamp,
		fieldPayload:   env.Payload,
		fieldMetadata:  metadata,
	}, nil
}

func decodeEntry(entry redis.XMessage) (*messaging.Message, error) {
	env := messaging.Envelope{}
	env.ID, _ = entry.Values[fieldID].(string)
	env.Type, _ = entry.Values[fieldType].(string)
	env.Payload, _ = entry.Values[fieldPayload].(string)
	if env.ID == "" {
		env.ID = entry.ID
	}
	switch v := entry.Values[fieldTimestamp].(type) {
	case int64:
		env.Timestamp = v
	case string:
		if ns, err := strconv.ParseInt(v, 10, 64); err == nil {
			env.Timestamp = ns
		}
	}
	raw, _ := entry.Values[fieldMetadata].(string)
	md, err := messaging.DecodeMetadata(raw)
	if err != nil {
		return nil, err
	}
	env.Metadata = md
	return env.ToMessage()
}
