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

type ConfigStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewConfigStore(db *sql.DB, writer *dbpkg.Worker) *ConfigStore {
	return &ConfigStore{db: db, writer: writer}
}

func (s *ConfigStore) Get(ctx context.Context) (types.AccessControlConfig, error) {
	var rfid, fingerprint int
	err := s.db.QueryRowContext(ctx, `
SELECT rfid_enabled, fingerprint_enabled FROM access_config WHERE id = 1;
`).Scan(&rfid, &fingerprint)
	if err == sql.ErrNoRows {
		return types.AccessControlConfig{}, store.ErrNotFound
	}
	if err != nil {
		return types.AccessControlConfig{}, fmt.Errorf("Get config: %w", err)
	}
	return types.AccessControlConfig{
		RFIDEnabled:        rfid == 1,
		FingerprintEnabled: fingerprint == 1,
	}, nil
}

// UpdateToggle applies the optimistic update as one conditional UPDATE:
// the write succeeds only while the other feature's toggle still holds
// expectedOther. Zero rows affected means someone changed the other
// toggle since the caller last read — ErrConflict, no write.
func (s *ConfigStore) UpdateToggle(ctx context.Context, feature types.Feature, newValue, expectedOther bool) (types.AccessControlConfig, error) {
	var column, otherColumn string
	switch feature {
	case types.FeatureRFID:
		column, otherColumn = "rfid_enabled", "fingerprint_enabled"
	case types.FeatureFingerprint:
		column, otherColumn = "fingerprint_enabled", "rfid_enabled"
	default:
		return types.AccessControlConfig{}, fmt.Errorf("UpdateToggle: unknown feature %q", feature)
	}

	var cfg types.AccessControlConfig
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
UPDATE access_config SET %s = ?, updated_at_ms = ?
WHERE id = 1 AND %s = ?;
`, column, otherColumn), boolToInt(newValue), time.Now().UTC().UnixMilli(), boolToInt(expectedOther))
		if err != nil {
			return fmt.Errorf("UpdateToggle update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("UpdateToggle rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrConflict
		}

		var rfid, fingerprint int
		if err := tx.QueryRowContext(ctx, `
SELECT rfid_enabled, fingerprint_enabled FROM access_config WHERE id = 1;
`).Scan(&rfid, &fingerprint); err != nil {
			return fmt.Errorf("UpdateToggle reread: %w", err)
		}
		cfg = types.AccessControlConfig{
			RFIDEnabled:        rfid == 1,
			FingerprintEnabled: fingerprint == 1,
		}
		return nil
	})
	if err != nil {
		return types.AccessControlConfig{}, err
	}
	return cfg, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
