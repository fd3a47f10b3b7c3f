// internal/database/actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/ninetynine/internal/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS round_actions (
	session_id     UUID        NOT NULL,
	action_index   INTEGER     NOT NULL,
	round_id       UUID,
	actor_id       TEXT        NOT NULL,
	action_type    TEXT        NOT NULL,
	action_payload JSONB       NOT NULL DEFAULT '{}',
	recorded_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (session_id, action_index)
)`

// ActionStore persists action records to the round_actions table.
type ActionStore struct {
	pool *pgxpool.Pool
}

// NewActionStore wraps pool.
func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Migrate creates the round_actions table if it does not exist.
func (s *ActionStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating round_actions: %w", err)
	}
	return nil
}

// WriteActions inserts records in a single transaction. Records already stored are
// skipped, so a batch retried after a partial failure is harmless.
func (s *ActionStore) WriteActions(ctx context.Context, records []cache.RoundActionRecord) error {
	return beginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %d of session %s: %w", rec.ActionIndex, rec.SessionID, err)
			}
		}
		return nil
	})
}

// CountActions returns how many actions are stored for a session.
func (s *ActionStore) CountActions(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM round_actions WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

func insertActionTx(ctx context.Context, tx pgx.Tx, rec cache.RoundActionRecord) error {
	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}

	var roundID *uuid.UUID
	if rec.RoundID != uuid.Nil {
		roundID = &rec.RoundID
	}

	q := `
		INSERT INTO round_actions (
			session_id, action_index, round_id, actor_id, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, q,
		rec.SessionID, rec.ActionIndex, roundID, rec.ActorID, rec.ActionType, payload,
		time.UnixMilli(rec.Timestamp),
	)
	return err
}
