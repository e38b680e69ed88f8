package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msg "github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

type testHandler struct{ count *int32 }

func (h *testHandler) Handle(ctx context.Context, m msg.IMessage) error {
	atomic.AddInt32(h.count, 1)
	return nil
}
func (h *testHandler) Type() string { return "testHandler" }

func TestTransport_PublishFlow(t *testing.T) {
	tpt := New(Config{QueueSize: 16, Workers: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, tpt.Start(ctx))

	var cnt int32
	require.NoError(t, tpt.Subscribe("video.audio_media.uploaded", &testHandler{count: &cnt}))
	require.NoError(t, tpt.Publish(ctx, &msg.Message{ID: "m1", Type: "video.audio_media.uploaded"}))
	require.NoError(t, tpt.Publish(ctx, &msg.Message{ID: "m2", Type: "other"}))

	require.Eventually(t, func() bool { return atomic.LoadInt32(&cnt) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, tpt.Close())
	assert.False(t, tpt.Stats().Running)
}

func TestTransport_CloseDrainsQueue(t *testing.T) {
	tpt := New(Config{QueueSize: 64, Workers: 1})
	require.NoError(t, tpt.Start(context.Background()))

	var cnt int32
	require.NoError(t, tpt.Subscribe(msg.WildcardType, &testHandler{count: &cnt}))
	for i := 0; i < 20; i++ {
		require.NoError(t, tpt.Publish(context.Background(), &msg.Message{ID: "m", Type: "t"}))
	}
	require.NoError(t, tpt.Close())
	assert.Equal(t, int32(20), atomic.LoadInt32(&cnt))

	assert.ErrorIs(t, tpt.Publish(context.Background(), &msg.Message{ID: "late", Type: "t"}), ErrNotRunning)
	// 可重新启动
	require.NoError(t, tpt.Start(context.Background()))
	require.NoError(t, tpt.Close())
}

func TestTransport_QueueFull(t *testing.T) {
	tpt := New(Config{QueueSize: 1, Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// worker 随 ctx 立即退出，队列不会被消费
	require.NoError(t, tpt.Start(ctx))
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, tpt.Publish(context.Background(), &msg.Message{ID: "1", Type: "t"}))
	assert.ErrorIs(t, tpt.Publish(context.Background(), &msg.Message{ID: "2", Type: "t"}), ErrQueueFull)
	require.NoError(t, tpt.Close())
}
