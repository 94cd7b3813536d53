package service

import (
	"context"
	"time"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

// recentItems is how many activity/alert rows the dashboard shows.
const recentItems = 5

// DashboardService assembles the derived operator view. It holds no
// state of its own: every Snapshot re-reads the stores and runs the
// pure aggregation, so concurrent callers get independent, consistent
// results. An empty event log yields zeroed metrics and a dense
// all-zero chart, never an error.
type DashboardService struct {
	events store.EventStore
	alerts store.AlertStore
}

func NewDashboardService(es store.EventStore, as store.AlertStore) *DashboardService {
	return &DashboardService{events: es, alerts: as}
}

func (s *DashboardService) Snapshot(ctx context.Context) (types.DashboardData, error) {
	now := time.Now().UTC()

	// Full history, newest first: metrics need the 30-day window plus
	// all-time unique actors, and the distribution covers everything.
	events, err := s.events.ListEvents(ctx, store.EventQuery{})
	if err != nil {
		return types.DashboardData{}, err
	}

	alerts, err := s.alerts.List(ctx, recentItems)
	if err != nil {
		return types.DashboardData{}, err
	}

	counts, err := s.events.MethodCounts(ctx)
	if err != nil {
		return types.DashboardData{}, err
	}

	recent := events
	if len(recent) > recentItems {
		recent = recent[:recentItems]
	}

	return types.DashboardData{
		Metrics:        ComputeMetrics(events, now),
		RecentActivity: eventViews(recent),
		RecentAlerts:   alertViews(alerts),
		ChartData:      BuildTimeSeries(events, now),
		AccessMethods:  BuildMethodDistribution(counts),
	}, nil
}
