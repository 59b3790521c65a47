package dto

import "time"

// DashboardResponse full dashboard view: stats panel, both charts and the
// ordered table rows, all derived from the same collection snapshot.
type DashboardResponse struct {
	Summary   SummaryDTO         `json:"summary"`
	Daily     []DailyBucketDTO   `json:"daily"`
	Documents []DocumentCountDTO `json:"documents"`
	Records   []CustomerResponse `json:"records"`
	SyncedAt  time.Time          `json:"synced_at"`
}

// SummaryDTO stats-panel counters.
type SummaryDTO struct {
	Total     int `json:"total"`
	PIPAlerts int `json:"pip_alerts"`
}

// DailyBucketDTO one bar of the submissions chart; buckets arrive in
// chronological order.
type DailyBucketDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DocumentCountDTO one slice of the document-type chart; always five, fixed
// order.
type DocumentCountDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
