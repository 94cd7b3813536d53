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

type FaceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewFaceStore(db *sql.DB, writer *dbpkg.Worker) *FaceStore {
	return &FaceStore{db: db, writer: writer}
}

func (s *FaceStore) Create(ctx context.Context, rec store.FaceRecord) error {
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	if rec.MatchState == "" {
		rec.MatchState = types.MatchPending
	}

	var refURL any
	if rec.ReferenceImageRef != nil {
		refURL = *rec.ReferenceImageRef
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO faces(id, reference_image_url, comparison_image_url, match_state, submitted_at_ms)
VALUES (?, ?, ?, ?, ?);
`, rec.ID, refURL, rec.ComparisonImageRef, string(rec.MatchState), rec.SubmittedAt.UTC().UnixMilli()); err != nil {
			return fmt.Errorf("Create insert: %w", err)
		}
		return nil
	})
}

func (s *FaceStore) Get(ctx context.Context, id string) (store.FaceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, reference_image_url, comparison_image_url, match_state, submitted_at_ms, resolved_at_ms
FROM faces WHERE id = ?;
`, id)

	rec, err := scanFace(row.Scan)
	if err == sql.ErrNoRows {
		return store.FaceRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.FaceRecord{}, fmt.Errorf("Get %s: %w", id, err)
	}
	return rec, nil
}

func (s *FaceStore) List(ctx context.Context) ([]store.FaceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, reference_image_url, comparison_image_url, match_state, submitted_at_ms, resolved_at_ms
FROM faces ORDER BY submitted_at_ms DESC, id DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []store.FaceRecord
	for rows.Next() {
		rec, err := scanFace(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}

// Resolve is the single-transition gate: the UPDATE only matches rows
// still in PENDING, so a second verdict for the same id changes
// nothing and reports applied=false.
func (s *FaceStore) Resolve(ctx context.Context, id string, state types.MatchState, at time.Time) (bool, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var applied bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE faces SET match_state = ?, resolved_at_ms = ?
WHERE id = ? AND match_state = 'PENDING';
`, string(state), at.UTC().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("Resolve update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Resolve rows affected: %w", err)
		}
		applied = n == 1
		return nil
	})
	return applied, err
}

func (s *FaceStore) FailStale(ctx context.Context, cutoff time.Time, at time.Time) (int64, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var n int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE faces SET match_state = 'FAILED', resolved_at_ms = ?
WHERE match_state = 'PENDING' AND submitted_at_ms < ?;
`, at.UTC().UnixMilli(), cutoff.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("FailStale update: %w", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("FailStale rows affected: %w", err)
		}
		return nil
	})
	return n, err
}

func scanFace(scan func(dest ...any) error) (store.FaceRecord, error) {
	var (
		rec         store.FaceRecord
		refURL      sql.NullString
		state       string
		submittedMs int64
		resolvedMs  sql.NullInt64
	)
	if err := scan(&rec.ID, &refURL, &rec.ComparisonImageRef, &state, &submittedMs, &resolvedMs); err != nil {
		return store.FaceRecord{}, err
	}
	if refURL.Valid {
		rec.ReferenceImageRef = &refURL.String
	}
	rec.MatchState = types.MatchState(state)
	rec.SubmittedAt = time.UnixMilli(submittedMs).UTC()
	if resolvedMs.Valid {
		t := time.UnixMilli(resolvedMs.Int64).UTC()
		rec.ResolvedAt = &t
	}
	return rec, nil
}
