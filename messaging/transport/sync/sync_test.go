package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	msg "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

type incHandler struct {
	n   *int
	err error
}

func (h *incHandler) Handle(ctx context.Context, m msg.IMessage) error { *h.n++; return h.err }
func (h *incHandler) Type() string                                     { return "inc" }

func TestTransport_PublishFlow(t *testing.T) {
	tpt := New(logging.NewNoopLogger())
	require.NoError(t, tpt.Start(context.Background()))
	defer tpt.Close()

	var exact, wildcard int
	h := &incHandler{n: &exact}
	require.NoError(t, tpt.Subscribe("category.created", h))
	require.NoError(t, tpt.Subscribe(msg.WildcardType, &incHandler{n: &wildcard}))

	require.NoError(t, tpt.Publish(context.Background(), &msg.Message{ID: "1", Type: "category.created"}))
	require.NoError(t, tpt.Publish(context.Background(), &msg.Message{ID: "2", Type: "genre.created"}))
	assert.Equal(t, 1, exact)
	assert.Equal(t, 2, wildcard)

	require.NoError(t, tpt.Unsubscribe("category.created", h))
	assert.ErrorIs(t, tpt.Unsubscribe("category.created", h), msg.ErrHandlerNotFound)
	stats := tpt.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, 1, stats.HandlerCount)
	assert.Equal(t, []string{msg.WildcardType}, stats.MessageTypes)
}

func TestTransport_HandlerErrorsJoined(t *testing.T) {
	tpt := New(nil)
	require.NoError(t, tpt.Start(context.Background()))

	boom := errors.New("boom")
	var n int
	require.NoError(t, tpt.Subscribe("T", &incHandler{n: &n, err: boom}))
	require.NoError(t, tpt.Subscribe("T", &incHandler{n: &n}))

	err := tpt.Publish(context.Background(), &msg.Message{ID: "1", Type: "T"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
}

func TestTransport_NotRunning(t *testing.T) {
	tpt := New(nil)
	assert.ErrorIs(t, tpt.Publish(context.Background(), &msg.Message{ID: "x", Type: "T"}), ErrNotRunning)
	assert.ErrorIs(t, tpt.Close(), ErrNotRunning)
	require.NoError(t, tpt.Start(context.Background()))
	assert.ErrorIs(t, tpt.Start(context.Background()), ErrAlreadyRunning)
}
