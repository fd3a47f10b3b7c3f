// internal/historian/historian_test.go
package historian

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jason-s-yu/ninetynine/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSink stores written batches and can be told to fail.
type mockSink struct {
	mu      sync.Mutex
	batches [][]cache.RoundActionRecord
	fail    bool
}

func (m *mockSink) WriteActions(_ context.Context, records []cache.RoundActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("database unavailable")
	}
	m.batches = append(m.batches, append([]cache.RoundActionRecord(nil), records...))
	return nil
}

func (m *mockSink) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *mockSink) indices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, b := range m.batches {
		for _, r := range b {
			out = append(out, r.ActionIndex)
		}
	}
	return out
}

func (m *mockSink) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

func setupHistorian(t *testing.T, batchSize int) (*Service, *cache.Publisher, *mockSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	sink := &mockSink{}
	svc := New(rdb, "test_actions", sink, batchSize, 50*time.Millisecond, logger)
	pub := cache.NewPublisher(rdb, "test_actions", logger)
	t.Cleanup(pub.Close)
	return svc, pub, sink, mr
}

func record(index int) cache.RoundActionRecord {
	return cache.RoundActionRecord{
		SessionID:     uuid.New(),
		ActionIndex:   index,
		ActorID:       "conn-alice",
		ActionType:    "play_card",
		ActionPayload: map[string]interface{}{"card": "9_of_clubs"},
		Timestamp:     time.Now().UnixMilli(),
	}
}

func runService(t *testing.T, svc *Service) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("historian did not stop")
		}
	})
	return cancel
}

func TestHistorianFlushesBySizeAndTime(t *testing.T) {
	svc, pub, sink, _ := setupHistorian(t, 2)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, pub.Publish(ctx, record(i)))
	}

	runService(t, svc)

	assert.Eventually(t, func() bool { return len(sink.indices()) == 3 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, sink.indices(), "records keep queue order")
	assert.GreaterOrEqual(t, sink.batchCount(), 2)
}

func TestHistorianSkipsInvalidRecords(t *testing.T) {
	svc, pub, sink, mr := setupHistorian(t, 1)
	_, err := mr.RPush("test_actions", "not json")
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), record(7)))

	runService(t, svc)

	assert.Eventually(t, func() bool { return len(sink.indices()) == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []int{7}, sink.indices())
}

func TestHistorianRetriesFailedFlush(t *testing.T) {
	svc, pub, sink, _ := setupHistorian(t, 1)
	sink.setFail(true)
	require.NoError(t, pub.Publish(context.Background(), record(1)))

	runService(t, svc)
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, sink.indices())

	sink.setFail(false)
	require.NoError(t, pub.Publish(context.Background(), record(2)))
	assert.Eventually(t, func() bool { return len(sink.indices()) == 2 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []int{1, 2}, sink.indices())
}

func TestHistorianFlushesOnShutdown(t *testing.T) {
	svc, pub, sink, _ := setupHistorian(t, 100)
	svc.flushDelay = time.Hour
	require.NoError(t, pub.Publish(context.Background(), record(1)))

	cancel := runService(t, svc)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, sink.indices(), "neither threshold reached yet")

	cancel()
	assert.Eventually(t, func() bool { return len(sink.indices()) == 1 }, 5*time.Second, 20*time.Millisecond)
}
