package messaging

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Envelope 消息的线上格式（Redis Streams 字段与 NATS 消息体共用）
type Envelope struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Payload   string         `json:"payload"`
	Metadata  map[string]any `json:"metadata"`
}

var codec = sonic.ConfigStd

// ToEnvelope 编码消息，payload 以 JSON 文本保存
func ToEnvelope(msg IMessage) (Envelope, error) {
	payload, err := codec.MarshalToString(msg.GetPayload())
	if err != nil {
		return Envelope{}, fmt.Errorf("encode payload of %s: %w", msg.GetType(), err)
	}
	metadata := msg.GetMetadata()
	if metadata == nil {
		metadata = make(map[string]any)
	}
	ts := msg.GetTimestamp()
	if ts.IsZero() {
		ts = time.Now()
	}
	return Envelope{
		ID:        msg.GetID(),
		Type:      msg.GetType(),
		Timestamp: ts.UnixNano(),
		Payload:   payload,
		Metadata:  metadata,
	}, nil
}

// ToMessage 解码线上格式，JSON 数字解码为 float64
func (e Envelope) ToMessage() (*Message, error) {
	var payload any
	if e.Payload != "" {
		if err := codec.UnmarshalFromString(e.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", e.Type, err)
		}
	}
	metadata := e.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	ts := time.Now()
	if e.Timestamp > 0 {
		ts = time.Unix(0, e.Timestamp)
	}
	return &Message{
		ID:        e.ID,
		Type:      e.Type,
		Timestamp: ts,
		Payload:   payload,
		Metadata:  metadata,
	}, nil
}

// Encode 编码为单个 JSON 文档
func Encode(msg IMessage) ([]byte, error) {
	env, err := ToEnvelope(msg)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(env)
}

// Decode 解码 Encode 的输出
func Decode(data []byte) (*Message, error) {
	var env Envelope
	if err := codec.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return env.ToMessage()
}

// EncodeMetadata 元数据编码为 JSON 文本
func EncodeMetadata(md map[string]any) (string, error) {
	if md == nil {
		md = map[string]any{}
	}
	return codec.MarshalToString(md)
}

// DecodeMetadata 解码 EncodeMetadata 的输出
func DecodeMetadata(raw string) (map[string]any, error) {
	md := make(map[string]any)
	if raw == "" {
		return md, nil
	}
	if err := codec.UnmarshalFromString(raw, &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return md, nil
}

// DecodePayload 把消息载荷转换为 dst
//
// 经线上传输的载荷是通用 JSON 值，进程内传输的载荷是原始结构体，两者都经一次 JSON 往返处理。
func DecodePayload(msg IMessage, dst any) error {
	if raw, ok := msg.GetPayload().(string); ok {
		return codec.UnmarshalFromString(raw, dst)
	}
	data, err := codec.Marshal(msg.GetPayload())
	if err != nil {
		return fmt.Errorf("encode payload of %s: %w", msg.GetType(), err)
	}
	if err := codec.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode payload of %s: %w", msg.GetType(), err)
	}
	return nil
}
