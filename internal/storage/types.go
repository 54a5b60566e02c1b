package storage

import "time"

// Stats holds aggregate statistics about the heed database.
type Stats struct {
	TotalMetrics      int64
	TotalRules        int64
	OldestInteraction time.Time
	NewestInteraction time.Time
	TopContent        []ContentDuration
}

// ContentDuration pairs a content ID with its total tracked duration.
type ContentDuration struct {
	ContentID     string
	TotalDuration int64
}

// metricRecord is the durable and export-file representation of a
// metrics row. Timestamps are epoch seconds; sub-second precision of
// the live records is dropped on persistence.
type metricRecord struct {
	ContentID       string `json:"content_id"`
	TotalDuration   int64  `json:"total_duration"`
	Interactions    int64  `json:"interactions"`
	LastInteraction int64  `json:"last_interaction"`
	CreatedAt       int64  `json:"created_at"`
}
