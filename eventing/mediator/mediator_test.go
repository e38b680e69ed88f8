package mediator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/entity"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing/mediator"
)

type renamed struct {
	eventing.DomainEvent
	Name string
}

func (e renamed) IntegrationEvent() eventing.IIntegrationEvent {
	return eventing.NewIntegrationEvent("thing.renamed", e, map[string]any{"id": e.AggregateID(), "name": e.Name})
}

type thing struct {
	entity.AggregateRoot
	id entity.Uuid
}

func (t *thing) AggregateID() string    { return t.id.String() }
func (t *thing) ToJSON() map[string]any { return map[string]any{"id": t.id.String()} }

func (t *thing) rename(name string) {
	t.ApplyEvent(renamed{DomainEvent: eventing.NewDomainEvent("Renamed", t.AggregateID(), 1), Name: name})
}

func (t *thing) touch() {
	t.ApplyEvent(eventing.NewDomainEvent("Touched", t.AggregateID(), 1))
}

func TestMediator_PublishIsIdempotent(t *testing.T) {
	m := mediator.New()
	var got []string
	m.RegisterFunc("Renamed", func(ctx context.Context, evt eventing.IDomainEvent) error {
		got = append(got, "a:"+evt.(renamed).Name)
		return nil
	})
	m.RegisterFunc("Renamed", func(ctx context.Context, evt eventing.IDomainEvent) error {
		got = append(got, "b:"+evt.(renamed).Name)
		return nil
	})

	th := &thing{id: entity.NewUuid()}
	th.rename("x")
	th.rename("y")

	require.NoError(t, m.Publish(context.Background(), th))
	assert.Equal(t, []string{"a:x", "b:x", "a:y", "b:y"}, got)
	assert.Empty(t, th.UndispatchedEvents())

	require.NoError(t, m.Publish(context.Background(), th))
	assert.Len(t, got, 4)
}

func TestMediator_HandlerErrorAbortsPublication(t *testing.T) {
	m := mediator.New()
	boom := errors.New("boom")
	calls := 0
	m.RegisterFunc("Renamed", func(ctx context.Context, evt eventing.IDomainEvent) error {
		calls++
		return boom
	})
	m.RegisterFunc("Touched", func(ctx context.Context, evt eventing.IDomainEvent) error {
		calls++
		return nil
	})

	th := &thing{id: entity.NewUuid()}
	th.rename("x")
	th.touch()

	err := m.Publish(context.Background(), th)
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)

	// 失败的事件已被标记，不会再次投递
	pending := th.UndispatchedEvents()
	require.Len(t, pending, 1)
	assert.Equal(t, "Touched", pending[0].EventType())

	require.NoError(t, m.Publish(context.Background(), th))
	assert.Equal(t, 2, calls)
}

func TestMediator_PublishIntegrationEvents(t *testing.T) {
	m := mediator.New()
	var names []string
	m.RegisterIntegrationFunc("thing.renamed", func(ctx context.Context, evt eventing.IIntegrationEvent) error {
		names = append(names, evt.EventData().(map[string]any)["name"].(string))
		return nil
	})

	th := &thing{id: entity.NewUuid()}
	th.touch()
	th.rename("x")
	require.NoError(t, m.Publish(context.Background(), th))
	require.NoError(t, m.PublishIntegrationEvents(context.Background(), th))

	assert.Equal(t, []string{"x"}, names)
}

func TestMediator_NoHandlers(t *testing.T) {
	m := mediator.New()
	th := &thing{id: entity.NewUuid()}
	th.touch()
	require.NoError(t, m.Publish(context.Background(), th))
	require.NoError(t, m.PublishIntegrationEvents(context.Background(), th))
	require.NoError(t, m.Publish(context.Background(), nil))
	assert.Len(t, th.DispatchedEvents(), 1)
}
