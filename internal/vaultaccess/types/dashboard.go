package types

// Metrics are the rolling dashboard counters. Attempts cover the
// trailing 30 days; UniqueActors covers the full history.
type Metrics struct {
	TotalAttempts      int `json:"total_attempts"`
	SuccessfulAttempts int `json:"successful_attempts"`
	FailedAttempts     int `json:"failed_attempts"`
	UniqueActors       int `json:"unique_actors"`
}

// ChartPoint is one day/bucket cell of the 7-day activity chart.
// Date is a calendar day in YYYY-MM-DD form (UTC).
type ChartPoint struct {
	Date   string `json:"date"`
	Method Method `json:"type"`
	Count  int    `json:"count"`
}

// MethodShare is one named slice of the access-method distribution,
// shaped for pie-style display.
type MethodShare struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DashboardData is the full derived view pushed to operators.
type DashboardData struct {
	Metrics        Metrics       `json:"metrics"`
	RecentActivity []AccessEvent `json:"recent_activity"`
	RecentAlerts   []Alert       `json:"recent_alerts"`
	ChartData      []ChartPoint  `json:"chart_data"`
	AccessMethods  []MethodShare `json:"access_methods"`
}
