package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T) (*Publisher, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb, err := Connect(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	pub := NewPublisher(rdb, "", logrus.New())
	t.Cleanup(pub.Close)
	return pub, mr
}

func TestPublishPushesJSON(t *testing.T) {
	pub, mr := newTestPublisher(t)

	rec := RoundActionRecord{
		SessionID:     uuid.New(),
		RoundID:       uuid.New(),
		ActionIndex:   3,
		ActorID:       "conn-1",
		ActionType:    "play_card",
		ActionPayload: map[string]interface{}{"card": "ace_of_spades"},
		Timestamp:     time.Now().UnixMilli(),
	}
	require.NoError(t, pub.Publish(context.Background(), rec))

	items, err := mr.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got RoundActionRecord
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, rec.SessionID, got.SessionID)
	assert.Equal(t, rec.ActionType, got.ActionType)
	assert.Equal(t, "ace_of_spades", got.ActionPayload["card"])
}

func TestRecordActionIsAsync(t *testing.T) {
	pub, mr := newTestPublisher(t)

	pub.RecordAction(RoundActionRecord{SessionID: uuid.New(), ActionIndex: 1, ActionType: "join"})

	assert.Eventually(t, func() bool {
		items, err := mr.List(DefaultQueueName)
		return err == nil && len(items) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecordActionKeepsOrder(t *testing.T) {
	pub, mr := newTestPublisher(t)
	session := uuid.New()

	const n = 100
	for i := 1; i <= n; i++ {
		pub.RecordAction(RoundActionRecord{SessionID: session, ActionIndex: i, ActionType: "play_card"})
	}
	pub.Close()

	items, err := mr.List(DefaultQueueName)
	require.NoError(t, err)
	require.Len(t, items, n, "Close waits for queued records")
	for i, item := range items {
		var got RoundActionRecord
		require.NoError(t, json.Unmarshal([]byte(item), &got))
		assert.Equal(t, i+1, got.ActionIndex)
	}
}

func TestRecordActionAfterClose(t *testing.T) {
	pub, mr := newTestPublisher(t)
	pub.Close()

	assert.NotPanics(t, func() {
		pub.RecordAction(RoundActionRecord{SessionID: uuid.New(), ActionIndex: 1})
	})
	items, _ := mr.List(DefaultQueueName)
	assert.Empty(t, items)
}

func TestConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), addr, 0)
	assert.Error(t, err)
}
