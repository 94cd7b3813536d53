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

type AlertStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAlertStore(db *sql.DB, writer *dbpkg.Worker) *AlertStore {
	return &AlertStore{db: db, writer: writer}
}

func (s *AlertStore) Append(ctx context.Context, rec store.AlertRecord) (int64, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	if rec.Severity == "" {
		rec.Severity = types.SeverityInfo
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO alerts(category, message, severity, occurred_at_ms)
VALUES (?, ?, ?, ?);
`, string(rec.Category), rec.Message, string(rec.Severity), rec.OccurredAt.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Append last id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *AlertStore) List(ctx context.Context, limit int) ([]store.AlertRecord, error) {
	query := `
SELECT id, category, message, severity, occurred_at_ms
FROM alerts
ORDER BY occurred_at_ms DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []store.AlertRecord
	for rows.Next() {
		var (
			rec        store.AlertRecord
			category   string
			severity   string
			occurredMs int64
		)
		if err := rows.Scan(&rec.ID, &category, &rec.Message, &severity, &occurredMs); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		rec.Category = types.AlertCategory(category)
		rec.Severity = types.Severity(severity)
		rec.OccurredAt = time.UnixMilli(occurredMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}
