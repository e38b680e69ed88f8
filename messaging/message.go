// Package messaging 提供集成事件的消息抽象、总线与传输层
//
// 应用服务在事务提交后把集成事件转为 Message，经 MessageBus 交给配置的 Transport
// （进程内同步、Redis Streams 或 NATS JetStream）。
package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
)

// 元数据键
const (
	MetaEventVersion = "event_version"
	MetaAggregateID  = "aggregate_id"
)

// IMessage 消息接口
type IMessage interface {
	// GetID 消息ID
	GetID() string

	// GetType 消息类型，即集成事件名，用于路由（流名/主题名）
	GetType() string

	// GetTimestamp 事件发生时间
	GetTimestamp() time.Time

	// GetPayload 消息数据
	GetPayload() any

	// GetMetadata 元数据
	GetMetadata() map[string]any
}

// Message 消息基础实现
type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (m *Message) GetID() string           { return m.ID }
func (m *Message) GetType() string         { return m.Type }
func (m *Message) GetTimestamp() time.Time { return m.Timestamp }
func (m *Message) GetPayload() any         { return m.Payload }

// GetMetadata 获取元数据
func (m *Message) GetMetadata() map[string]any {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	return m.Metadata
}

// SetMetadata 设置元数据
func (m *Message) SetMetadata(key string, value any) {
	m.GetMetadata()[key] = value
}

// NewMessage 创建新消息
func NewMessage(messageID, messageType string, data any) *Message {
	if messageID == "" {
		messageID = uuid.NewString()
	}
	return &Message{
		ID:        messageID,
		Type:      messageType,
		Timestamp: time.Now(),
		Payload:   data,
		Metadata:  make(map[string]any),
	}
}

// FromIntegrationEvent 把集成事件包装为消息
func FromIntegrationEvent(evt eventing.IIntegrationEvent) *Message {
	msg := NewMessage("", evt.EventName(), evt.EventData())
	if !evt.OccurredOn().IsZero() {
		msg.Timestamp = evt.OccurredOn()
	}
	msg.SetMetadata(MetaEventVersion, evt.EventVersion())
	return msg
}
