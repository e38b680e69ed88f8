package messaging_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/middleware"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging/transport/memory"
)

type countingHandler struct{ n int32 }

func (h *countingHandler) Handle(ctx context.Context, msg messaging.IMessage) error {
	atomic.AddInt32(&h.n, 1)
	return nil
}
func (h *countingHandler) Type() string { return "counting" }

// 多个 goroutine 并发发布，配合 -race 检查总线与内存传输的分发路径
func TestMessageBus_WithMemoryTransport_ConcurrentPublish(t *testing.T) {
	tpt := memory.New(memory.Config{QueueSize: 4096, Workers: 4, Logger: logging.NewNoopLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := messaging.NewMessageBus(tpt)
	bus.Use(middleware.NewTracingMiddleware())
	require.NoError(t, bus.Start(ctx))

	handler := &countingHandler{}
	const msgType = "video.audio_media.uploaded"
	require.NoError(t, bus.Subscribe(ctx, msgType, handler))

	const goroutines, perGoroutine = 8, 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				_ = bus.Publish(ctx, messaging.NewMessage(fmt.Sprintf("m-%d-%d", id, i), msgType, "payload"))
			}
		}(g)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&handler.n) == goroutines*perGoroutine
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Close())
}
