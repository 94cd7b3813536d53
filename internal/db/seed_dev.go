package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev populates a dev database with sample alerts and access
// events so the dashboard has something to show. Inserts are keyed off
// a count check so repeated startups do not stack duplicates.
func SeedDev(ctx context.Context, db *sql.DB) error {
	var alerts int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts;").Scan(&alerts); err != nil {
		return fmt.Errorf("seed count alerts: %w", err)
	}
	if alerts > 0 {
		return nil
	}

	now := time.Now().UTC()
	hoursAgo := func(h int) int64 { return now.Add(-time.Duration(h) * time.Hour).UnixMilli() }

	sampleAlerts := []struct {
		category string
		message  string
		severity string
		atMs     int64
	}{
		{"ACCESS_CONTROL", "Fingerprint access disabled", "info", hoursAgo(6)},
		{"ACCESS_CONTROL", "RFID access disabled", "info", hoursAgo(6)},
		{"ACCESS_CONTROL", "Fingerprint access enabled", "info", hoursAgo(6)},
		{"ACCESS_CONTROL", "RFID access enabled", "info", hoursAgo(7)},
		{"FACE_RECOGNITION", "Reference face updated", "info", hoursAgo(11)},
		{"SYSTEM", "Multiple failed access attempts detected", "warning", hoursAgo(12)},
		{"SYSTEM", "System updated to version 2.1.0", "info", hoursAgo(24)},
		{"SYSTEM", "Database backup completed", "info", hoursAgo(36)},
		{"SECURITY", "New user registered", "info", hoursAgo(48)},
		{"SECURITY", "Administrator login from new location", "warning", hoursAgo(72)},
	}

	for _, a := range sampleAlerts {
		if _, err := db.ExecContext(ctx, `
INSERT INTO alerts(category, message, severity, occurred_at_ms)
VALUES (?, ?, ?, ?);`, a.category, a.message, a.severity, a.atMs); err != nil {
			return fmt.Errorf("seed alerts: %w", err)
		}
	}

	sampleEvents := []struct {
		method    string
		rawStatus string
		outcome   string
		atMs      int64
	}{
		{"ADMIN", "TRUE", "GRANTED", hoursAgo(2)},
		{"CLIENT", "TRUE", "GRANTED", hoursAgo(5)},
		{"CLIENT", "FALSE", "DENIED", hoursAgo(8)},
		{"ADMIN", "TRUE", "GRANTED", hoursAgo(26)},
		{"USER", "FALSE", "DENIED", hoursAgo(30)},
		{"CLIENT", "TRUE", "GRANTED", hoursAgo(50)},
	}

	for _, e := range sampleEvents {
		if _, err := db.ExecContext(ctx, `
INSERT INTO access_events(method, raw_status, outcome, occurred_at_ms)
VALUES (?, ?, ?, ?);`, e.method, e.rawStatus, e.outcome, e.atMs); err != nil {
			return fmt.Errorf("seed access_events: %w", err)
		}
	}

	return nil
}
