// Package eventing 定义领域事件与集成事件契约
//
// 领域事件在进程内由聚合产生并在提交前分发；集成事件是领域事件面向外部的投影，
// 仅在事务提交后发布。
package eventing

import (
	"time"

	"github.com/google/uuid"
)

// IDomainEvent 领域事件接口
type IDomainEvent interface {
	// EventID 事件实例唯一标识，用于去重与分发标记
	EventID() string

	// EventType 事件类型名，用于路由
	EventType() string

	// AggregateID 所属聚合的标识
	AggregateID() string

	// OccurredOn 发生时间
	OccurredOn() time.Time

	// EventVersion 事件结构版本（>=1）
	EventVersion() int
}

// IIntegrationEvent 集成事件接口
type IIntegrationEvent interface {
	EventName() string
	EventVersion() int
	OccurredOn() time.Time
	EventData() any
}

// IIntegrationEventSource 可以投影为集成事件的领域事件
//
// 未实现此接口的领域事件只在进程内可见。
type IIntegrationEventSource interface {
	IDomainEvent
	IntegrationEvent() IIntegrationEvent
}

// DomainEvent 领域事件基础实现，供具体事件嵌入
//
// 示例:
//
//	type CategoryCreated struct {
//	    eventing.DomainEvent
//	    Name string
//	}
type DomainEvent struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"event_type"`
	Aggregate  string    `json:"aggregate_id"`
	OccurredAt time.Time `json:"occurred_on"`
	Version    int       `json:"event_version"`
}

// NewDomainEvent 创建领域事件基础字段，version 小于 1 时按 1 处理
func NewDomainEvent(eventType, aggregateID string, version int) DomainEvent {
	if version < 1 {
		version = 1
	}
	return DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Aggregate:  aggregateID,
		OccurredAt: time.Now(),
		Version:    version,
	}
}

func (e DomainEvent) EventID() string       { return e.ID }
func (e DomainEvent) EventType() string     { return e.Type }
func (e DomainEvent) AggregateID() string   { return e.Aggregate }
func (e DomainEvent) OccurredOn() time.Time { return e.OccurredAt }
func (e DomainEvent) EventVersion() int     { return e.Version }

// IntegrationEvent 集成事件基础实现
type IntegrationEvent struct {
	Name       string    `json:"event_name"`
	Version    int       `json:"event_version"`
	OccurredAt time.Time `json:"occurred_on"`
	Data       any       `json:"event_data"`
}

// NewIntegrationEvent 由领域事件派生集成事件，沿用其发生时间与版本
func NewIntegrationEvent(name string, source IDomainEvent, data any) *IntegrationEvent {
	version := 1
	occurred := time.Now()
	if source != nil {
		version = source.EventVersion()
		occurred = source.OccurredOn()
	}
	return &IntegrationEvent{Name: name, Version: version, OccurredAt: occurred, Data: data}
}

func (e *IntegrationEvent) EventName() string     { return e.Name }
func (e *IntegrationEvent) EventVersion() int     { return e.Version }
func (e *IntegrationEvent) OccurredOn() time.Time { return e.OccurredAt }
func (e *IntegrationEvent) EventData() any        { return e.Data }
