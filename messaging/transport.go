package messaging

import "context"

// WildcardType 订阅全部消息类型
const WildcardType = "*"

// ITransport 消息传输：sync、memory、redis streams、nats jetstream
type ITransport interface {
	Publish(ctx context.Context, message IMessage) error
	PublishAll(ctx context.Context, messages []IMessage) error
	Subscribe(messageType string, handler IMessageHandler) error
	Unsubscribe(messageType string, handler IMessageHandler) error
	Start(ctx context.Context) error
	Close() error
	Stats() TransportStats
}

// TransportStats 传输统计
type TransportStats struct {
	Running      bool     `json:"running"`
	HandlerCount int      `json:"handler_count"`
	MessageTypes []string `json:"message_types"`
}

// MatchHandlers 某类型的处理器：精确订阅在前，通配订阅在后
func MatchHandlers(handlers map[string][]IMessageHandler, messageType string) []IMessageHandler {
	matched := append([]IMessageHandler(nil), handlers[messageType]...)
	if messageType == WildcardType {
		return matched
	}
	return append(matched, handlers[WildcardType]...)
}

// RemoveHandler 移除首个相同的处理器
func RemoveHandler(handlers []IMessageHandler, handler IMessageHandler) ([]IMessageHandler, bool) {
	for i, h := range handlers {
		if h == handler {
			return append(handlers[:i:i], handlers[i+1:]...), true
		}
	}
	return handlers, false
}
