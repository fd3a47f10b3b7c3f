// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list the historian drains.
const DefaultQueueName = "ninetynine_actions"

// RoundActionRecord is one applied game action, in the shape the historian stores it.
type RoundActionRecord struct {
	SessionID     uuid.UUID              `json:"session_id"`
	RoundID       uuid.UUID              `json:"round_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorID       string                 `json:"actor_id"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Connect opens a Redis client and verifies it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// publishBuffer is how many records may wait for the publisher goroutine.
const publishBuffer = 256

// Publisher pushes action records onto the historian queue. Records handed to
// RecordAction are published by a single goroutine, so they reach the list in the
// order they were recorded.
type Publisher struct {
	rdb     *redis.Client
	queue   string
	timeout time.Duration
	logger  logrus.FieldLogger

	mu      sync.RWMutex // guards closed and sends on records
	closed  bool
	records chan RoundActionRecord
	done    chan struct{}
}

// NewPublisher returns a Publisher writing to queue and starts its publishing
// goroutine. An empty queue selects DefaultQueueName. Call Close to stop it.
func NewPublisher(rdb *redis.Client, queue string, logger logrus.FieldLogger) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	p := &Publisher{
		rdb:     rdb,
		queue:   queue,
		timeout: 2 * time.Second,
		logger:  logger,
		records: make(chan RoundActionRecord, publishBuffer),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish serializes the record to JSON and RPushes it to the queue.
func (p *Publisher) Publish(ctx context.Context, record RoundActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundActionRecord: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// RecordAction queues the record without blocking; the caller holds the game lock.
// When the queue is full, or the publisher is closed, the record is dropped.
func (p *Publisher) RecordAction(record RoundActionRecord) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.records <- record:
	default:
		p.logger.Warnf("publish queue full, dropping action %d (%s) for session %s", record.ActionIndex, record.ActionType, record.SessionID)
	}
}

// Close stops accepting records and waits until the queued ones are published.
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.records)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *Publisher) run() {
	defer close(p.done)
	for rec := range p.records {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.Publish(ctx, rec); err != nil {
			p.logger.WithError(err).Warnf("dropping action %d (%s) for session %s", rec.ActionIndex, rec.ActionType, rec.SessionID)
		}
		cancel()
	}
}
