package redisstreams

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ts := time.Unix(0, 1700000000000000000)
	msg := &messaging.Message{
		ID:        "msg-1",
		Type:      "video.audio_media.uploaded",
		Timestamp: ts,
		Payload:   map[string]any{"resource_id": "v1.video", "file_path": "videos/v1/a.mp4"},
		Metadata:  map[string]any{messaging.MetaEventVersion: 1},
	}

	values, err := encodeEntry(msg)
	require.NoError(t, err)

	decoded, err := decodeEntry(redis.XMessage{ID: "1-0", Values: values})
	require.NoError(t, err)
	assert.Equal(t, msg.ID, decoded.GetID())
	assert.Equal(t, msg.Type, decoded.GetType())
	assert.Equal(t, ts.UnixNano(), decoded.GetTimestamp().UnixNano())
	assert.Equal(t, "videos/v1/a.mp4", decoded.GetPayload().(map[string]any)["file_path"])
	assert.Equal(t, float64(1), decoded.GetMetadata()[messaging.MetaEventVersion])
}

func TestDecodeStringTimestampAndMissingID(t *testing.T) {
	decoded, err := decodeEntry(redis.XMessage{ID: "2-0", Values: map[string]any{
		fieldType:      "t",
		fieldTimestamp: "1700000000000000000",
		fieldPayload:   "{}",
		fieldMetadata:  "{}",
	}})
	require.NoError(t, err)
	assert.Equal(t, "2-0", decoded.GetID())
	assert.Equal(t, int64(1700000000000000000), decoded.GetTimestamp().UnixNano())
}

type recorder struct {
	mu   sync.Mutex
	seen []messaging.IMessage
}

func (r *recorder) Handle(ctx context.Context, m messaging.IMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, m)
	return nil
}
func (r *recorder) Type() string { return "recorder" }
func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestTransport_PublishConsume(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	tpt, err := NewTransport(Config{
		Client:       rdb,
		BlockTimeout: 50 * time.Millisecond,
		Logger:       logging.NewNoopLogger(),
	})
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, tpt.Subscribe("video.audio_media.uploaded", rec))
	require.NoError(t, tpt.Start(context.Background()))
	defer tpt.Close()

	// 等待消费组创建，避免消息先于组写入时被 ">" 跳过
	require.Eventually(t, func() bool { return m.Exists("catalog:video.audio_media.uploaded") },
		time.Second, 10*time.Millisecond)

	msg := messaging.NewMessage("", "video.audio_media.uploaded", map[string]any{"resource_id": "v1.video"})
	require.NoError(t, tpt.Publish(context.Background(), msg))

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, msg.ID, rec.seen[0].GetID())
	assert.True(t, tpt.Stats().Running)
}

func TestNewTransport_RequiresAddress(t *testing.T) {
	_, err := NewTransport(Config{})
	assert.Error(t, err)
}

func TestTransport_WildcardReadsEveryStream(t *testing.T) {
	m := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	tpt, err := NewTransport(Config{
		Client:       rdb,
		BlockTimeout: 50 * time.Millisecond,
		Logger:       logging.NewNoopLogger(),
	})
	require.NoError(t, err)

	// 启动前已存在的流，没有任何具体订阅
	before := messaging.NewMessage("", "category.created", map[string]any{"id": "c1"})
	require.NoError(t, tpt.Publish(context.Background(), before))
	require.NoError(t, rdb.Set(context.Background(), "catalog:not-a-stream", "x", 0).Err())

	rec := &recorder{}
	require.NoError(t, tpt.Subscribe(messaging.WildcardType, rec))
	require.NoError(t, tpt.Start(context.Background()))
	defer tpt.Close()

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// 运行中出现的新类型
	after := messaging.NewMessage("", "genre.created", map[string]any{"id": "g1"})
	require.NoError(t, tpt.Publish(context.Background(), after))
	require.Eventually(t, func() bool { return rec.count() == 2 }, 2*time.Second, 10*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	ids := []string{rec.seen[0].GetID(), rec.seen[1].GetID()}
	assert.ElementsMatch(t, []string{before.ID, after.ID}, ids)
}
