package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/SahiDemon/vaultaccess/server/internal/db"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type EventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	return &EventStore{db: db, writer: writer}
}

func (s *EventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) (int64, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO access_events(method, raw_status, outcome, occurred_at_ms)
VALUES (?, ?, ?, ?);
`, string(rec.Method), rec.RawStatus, string(rec.Outcome), rec.OccurredAt.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("RecordEvent last id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *EventStore) ListEvents(ctx context.Context, q store.EventQuery) ([]store.AccessEventRecord, error) {
	query := `
SELECT id, method, raw_status, outcome, occurred_at_ms
FROM access_events
WHERE 1=1`
	var args []any
	if !q.Since.IsZero() {
		query += " AND occurred_at_ms >= ?"
		args = append(args, q.Since.UTC().UnixMilli())
	}
	if !q.Until.IsZero() {
		query += " AND occurred_at_ms < ?"
		args = append(args, q.Until.UTC().UnixMilli())
	}
	query += " ORDER BY occurred_at_ms DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("ListEvents query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessEventRecord
	for rows.Next() {
		var (
			rec        store.AccessEventRecord
			method     string
			outcome    string
			occurredMs int64
		)
		if err := rows.Scan(&rec.ID, &method, &rec.RawStatus, &outcome, &occurredMs); err != nil {
			return nil, fmt.Errorf("ListEvents scan: %w", err)
		}
		rec.Method = types.Method(method)
		rec.Outcome = types.Outcome(outcome)
		rec.OccurredAt = time.UnixMilli(occurredMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListEvents rows: %w", err)
	}
	return out, nil
}

func (s *EventStore) MethodCounts(ctx context.Context) (map[types.Method]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT method, COUNT(*) FROM access_events GROUP BY method;
`)
	if err != nil {
		return nil, fmt.Errorf("MethodCounts query: %w", err)
	}
	defer rows.Close()

	out := make(map[types.Method]int64)
	for rows.Next() {
		var (
			method string
			n      int64
		)
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("MethodCounts scan: %w", err)
		}
		out[types.Method(method)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MethodCounts rows: %w", err)
	}
	return out, nil
}
