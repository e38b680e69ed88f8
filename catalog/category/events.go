package category

import (
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
)

// 领域事件类型
const (
	CreatedEventType = "CategoryCreated"
	UpdatedEventType = "CategoryUpdated"
	DeletedEventType = "CategoryDeleted"
)

// 集成事件名
const (
	CreatedIntegrationEvent = "category.created"
	UpdatedIntegrationEvent = "category.updated"
	DeletedIntegrationEvent = "category.deleted"
)

// IntegrationEvents 本包发布的全部集成事件名
var IntegrationEvents = []string{CreatedIntegrationEvent, UpdatedIntegrationEvent, DeletedIntegrationEvent}

// Snapshot 事件携带的分类状态
type Snapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
}

func snapshotOf(c *Category) Snapshot {
	return Snapshot{ID: c.id.String(), Name: c.name, Description: c.description, IsActive: c.isActive}
}

// Created 分类已创建
type Created struct {
	eventing.DomainEvent
	Category Snapshot
}

func newCreated(c *Category) Created {
	return Created{DomainEvent: eventing.NewDomainEvent(CreatedEventType, c.AggregateID(), 1), Category: snapshotOf(c)}
}

// IntegrationEvent 实现 eventing.IIntegrationEventSource
func (e Created) IntegrationEvent() eventing.IIntegrationEvent {
	return eventing.NewIntegrationEvent(CreatedIntegrationEvent, e, e.Category)
}

// Updated 分类已更新
type Updated struct {
	eventing.DomainEvent
	Category Snapshot
}

func newUpdated(c *Category) Updated {
	return Updated{DomainEvent: eventing.NewDomainEvent(UpdatedEventType, c.AggregateID(), 1), Category: snapshotOf(c)}
}

func (e Updated) IntegrationEvent() eventing.IIntegrationEvent {
	return eventing.NewIntegrationEvent(UpdatedIntegrationEvent, e, e.Category)
}

// Deleted 分类已删除
type Deleted struct {
	eventing.DomainEvent
}

func newDeleted(c *Category) Deleted {
	return Deleted{DomainEvent: eventing.NewDomainEvent(DeletedEventType, c.AggregateID(), 1)}
}

func (e Deleted) IntegrationEvent() eventing.IIntegrationEvent {
	return eventing.NewIntegrationEvent(DeletedIntegrationEvent, e, map[string]string{"id": e.AggregateID()})
}
