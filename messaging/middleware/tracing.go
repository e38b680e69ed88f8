// Package middleware 消息总线的发布侧中间件
package middleware

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

// 元数据键
const (
	KeyCorrelationID = "correlation_id"
	KeyTraceID       = "trace_id"
	KeySpanID        = "span_id"
)

type correlationKey struct{}

// WithCorrelationID 在上下文中携带关联ID，同一请求产生的消息共用该值
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID 读取上下文中的关联ID
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// TracingMiddleware 把链路信息写入消息元数据
//
// 当前 span 有效时写入 trace_id/span_id 以及 W3C traceparent，消费端可据此续接链路；
// correlation_id 缺失时依次取上下文、trace_id、消息ID。已有的值不会被覆盖。
type TracingMiddleware struct {
	propagator propagation.TextMapPropagator
}

// NewTracingMiddleware 创建中间件
func NewTracingMiddleware() *TracingMiddleware {
	return &TracingMiddleware{propagator: propagation.TraceContext{}}
}

func (m *TracingMiddleware) Name() string { return "Tracing" }

func (m *TracingMiddleware) Handle(ctx context.Context, message messaging.IMessage, next messaging.HandlerFunc) error {
	if message == nil {
		return next(ctx, message)
	}
	md := message.GetMetadata()

	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		traceID = sc.TraceID().String()
		setIfEmpty(md, KeyTraceID, traceID)
		setIfEmpty(md, KeySpanID, sc.SpanID().String())

		carrier := propagation.MapCarrier{}
		m.propagator.Inject(ctx, carrier)
		for k, v := range carrier {
			setIfEmpty(md, k, v)
		}
	}

	switch {
	case CorrelationID(ctx) != "":
		setIfEmpty(md, KeyCorrelationID, CorrelationID(ctx))
	case traceID != "":
		setIfEmpty(md, KeyCorrelationID, traceID)
	default:
		setIfEmpty(md, KeyCorrelationID, message.GetID())
	}

	return next(ctx, message)
}

// Extract 从消息元数据恢复远端 span 上下文
func (m *TracingMiddleware) Extract(ctx context.Context, message messaging.IMessage) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range message.GetMetadata() {
		if s, ok := v.(string); ok {
			carrier[k] = s
		}
	}
	ctx = m.propagator.Extract(ctx, carrier)
	if id, ok := message.GetMetadata()[KeyCorrelationID].(string); ok && id != "" {
		ctx = WithCorrelationID(ctx, id)
	}
	return ctx
}

func setIfEmpty(md map[string]any, key, value string) {
	if v, ok := md[key]; ok && v != nil && v != "" {
		return
	}
	md[key] = value
}
