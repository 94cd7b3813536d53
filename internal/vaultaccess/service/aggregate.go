package service

import (
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// Aggregation is pure: every function here is deterministic in its
// (events, now) inputs so concurrent dashboard reads need no locking.

const (
	metricsWindowDays = 30
	chartWindowDays   = 7
)

// ComputeMetrics derives the rolling counters from the full event
// history. Attempt counts cover the trailing 30 days; the unique-actor
// count covers everything, excluding the System sentinel. Granted,
// denied and unknown partition the window: every event lands in
// exactly one bucket.
func ComputeMetrics(events []store.AccessEventRecord, now time.Time) types.Metrics {
	windowStart := now.AddDate(0, 0, -metricsWindowDays)

	var m types.Metrics
	actors := make(map[types.Method]struct{})

	for _, ev := range events {
		if ev.Method != "" && ev.Method != types.SystemActor {
			actors[ev.Method] = struct{}{}
		}

		if !ev.OccurredAt.After(windowStart) {
			continue
		}
		m.TotalAttempts++
		switch ev.Outcome {
		case types.OutcomeGranted:
			m.SuccessfulAttempts++
		case types.OutcomeDenied:
			m.FailedAttempts++
		}
	}

	m.UniqueActors = len(actors)
	return m
}

// BuildTimeSeries produces the dense 7-day activity chart: one point
// per trailing calendar day (oldest first, today included) per
// {ADMIN, CLIENT} bucket — always 14 points, zeros included. Events
// with any non-ADMIN method count toward the CLIENT bucket.
func BuildTimeSeries(events []store.AccessEventRecord, now time.Time) []types.ChartPoint {
	type dayCounts struct {
		admin  int
		client int
	}

	days := make([]string, 0, chartWindowDays)
	counts := make(map[string]*dayCounts, chartWindowDays)
	for i := chartWindowDays - 1; i >= 0; i-- {
		day := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		days = append(days, day)
		counts[day] = &dayCounts{}
	}

	for _, ev := range events {
		day := ev.OccurredAt.UTC().Format("2006-01-02")
		c, ok := counts[day]
		if !ok {
			continue
		}
		if ev.Method == types.MethodAdmin {
			c.admin++
		} else {
			c.client++
		}
	}

	out := make([]types.ChartPoint, 0, chartWindowDays*2)
	for _, day := range days {
		c := counts[day]
		out = append(out,
			types.ChartPoint{Date: day, Method: types.MethodAdmin, Count: c.admin},
			types.ChartPoint{Date: day, Method: types.MethodClient, Count: c.client},
		)
	}
	return out
}

// BuildMethodDistribution shapes full-history method totals for
// pie-style display. Only the two charted methods get slices; the
// labels match what the operator UI has always shown.
func BuildMethodDistribution(counts map[types.Method]int64) []types.MethodShare {
	return []types.MethodShare{
		{Name: "Admin (RFID)", Value: int(counts[types.MethodAdmin])},
		{Name: "Client (Face+Fingerprint)", Value: int(counts[types.MethodClient])},
	}
}
