// internal/historian/historian.go drains the action queue written by the game server
// and persists the records in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jason-s-yu/ninetynine/internal/cache"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// maxPendingBatches bounds how many batches are held back while the sink is failing.
const maxPendingBatches = 10

// Sink persists a batch of action records. A batch is written atomically or not at all.
type Sink interface {
	WriteActions(ctx context.Context, records []cache.RoundActionRecord) error
}

// Service pops records from a Redis list and flushes them to a Sink once batchSize
// records are pending or flushDelay has passed since the last flush.
type Service struct {
	rdb        *redis.Client
	queue      string
	sink       Sink
	batchSize  int
	flushDelay time.Duration
	popTimeout time.Duration
	logger     logrus.FieldLogger

	batch     []cache.RoundActionRecord
	lastFlush time.Time
}

// New builds a Service. It does not start consuming until Run.
func New(rdb *redis.Client, queue string, sink Sink, batchSize int, flushDelay time.Duration, logger logrus.FieldLogger) *Service {
	if queue == "" {
		queue = cache.DefaultQueueName
	}
	return &Service{
		rdb:        rdb,
		queue:      queue,
		sink:       sink,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		popTimeout: max(flushDelay, time.Second),
		logger:     logger,
		batch:      make([]cache.RoundActionRecord, 0, batchSize),
	}
}

// Run consumes the queue until ctx is cancelled, then flushes what it holds.
func (s *Service) Run(ctx context.Context) {
	s.logger.Infof("historian consuming %s", s.queue)
	s.lastFlush = time.Now()

	for ctx.Err() == nil {
		rec, ok, err := s.pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.WithError(err).Error("BLPop failed")
			select {
			case <-ctx.Done():
			case <-time.After(s.popTimeout):
			}
			continue
		}
		if ok {
			s.batch = append(s.batch, rec)
		}
		if len(s.batch) >= s.batchSize || (len(s.batch) > 0 && time.Since(s.lastFlush) >= s.flushDelay) {
			s.flush(ctx)
		}
	}

	// Give the final flush its own deadline; ctx is already done.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(flushCtx)
	s.logger.Info("historian stopped")
}

// pop waits up to popTimeout for one record. ok is false when the wait timed out or
// the payload could not be decoded.
func (s *Service) pop(ctx context.Context) (cache.RoundActionRecord, bool, error) {
	var rec cache.RoundActionRecord

	res, err := s.rdb.BLPop(ctx, s.popTimeout, s.queue).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		s.logger.WithError(err).Warn("invalid action record, skipping")
		return rec, false, nil
	}
	return rec, true, nil
}

// flush writes the pending batch. On failure the batch is kept for the next attempt
// unless too many records have piled up, in which case the oldest are dropped.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}

	if err := s.sink.WriteActions(ctx, s.batch); err != nil {
		s.logger.WithError(err).Errorf("failed to flush %d actions", len(s.batch))
		if limit := maxPendingBatches * s.batchSize; len(s.batch) > limit {
			dropped := len(s.batch) - limit
			s.batch = append(s.batch[:0], s.batch[dropped:]...)
			s.logger.Warnf("dropped %d unflushed actions", dropped)
		}
		return
	}

	s.logger.Debugf("flushed %d actions", len(s.batch))
	s.batch = make([]cache.RoundActionRecord, 0, s.batchSize)
}
