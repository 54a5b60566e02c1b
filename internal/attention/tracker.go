package attention

import (
	"sort"
	"sync"
	"time"
)

// Metrics holds the accumulated attention statistics for one content
// identifier. TotalDuration and Interactions only grow while the
// identifier is tracked.
type Metrics struct {
	ContentID       string    `json:"content_id"`
	TotalDuration   int64     `json:"total_duration"` // milliseconds
	Interactions    int64     `json:"interactions"`
	LastInteraction time.Time `json:"last_interaction"`
	CreatedAt       time.Time `json:"created_at"`
}

// Tracker aggregates attention metrics in memory. All mutation is
// local; durability is the processor's responsibility.
type Tracker struct {
	mu      sync.RWMutex
	metrics map[string]*Metrics
	started time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		metrics: make(map[string]*Metrics),
		started: time.Now(),
	}
}

// Track records one interaction with the given content for duration
// milliseconds. The first call for an identifier creates its record;
// later calls accumulate into it.
func (t *Tracker) Track(contentID string, duration int64) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.metrics[contentID]; ok {
		m.TotalDuration += duration
		m.Interactions++
		m.LastInteraction = now
		return
	}
	t.metrics[contentID] = &Metrics{
		ContentID:       contentID,
		TotalDuration:   duration,
		Interactions:    1,
		LastInteraction: now,
		CreatedAt:       now,
	}
}

// Get returns a snapshot of the metrics for contentID, or nil if the
// identifier has never been tracked.
func (t *Tracker) Get(contentID string) *Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.metrics[contentID]
	if !ok {
		return nil
	}
	out := *m
	return &out
}

// All returns a snapshot of every tracked record. Order is unspecified.
func (t *Tracker) All() []Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() []Metrics {
	out := make([]Metrics, 0, len(t.metrics))
	for _, m := range t.metrics {
		out = append(out, *m)
	}
	return out
}

// TotalDuration sums tracked duration across all content.
func (t *Tracker) TotalDuration() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total int64
	for _, m := range t.metrics {
		total += m.TotalDuration
	}
	return total
}

// AverageDuration returns the mean duration per interaction across all
// records. The second return is false when nothing has been tracked.
func (t *Tracker) AverageDuration() (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.metrics) == 0 {
		return 0, false
	}
	var total, count int64
	for _, m := range t.metrics {
		total += m.TotalDuration
		count += m.Interactions
	}
	return float64(total) / float64(count), true
}

// TopByInteractions returns up to n records sorted by interaction
// count, descending. Tie order is unspecified.
func (t *Tracker) TopByInteractions(n int) []Metrics {
	t.mu.RLock()
	out := t.snapshotLocked()
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Interactions > out[j].Interactions
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopByRecency returns up to n records sorted by last interaction
// time, most recent first. Tie order is unspecified.
func (t *Tracker) TopByRecency(n int) []Metrics {
	t.mu.RLock()
	out := t.snapshotLocked()
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastInteraction.After(out[j].LastInteraction)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Distribution returns each record's share of total tracked duration
// as a percentage. Empty when total duration is zero.
func (t *Tracker) Distribution() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total int64
	for _, m := range t.metrics {
		total += m.TotalDuration
	}
	if total == 0 {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(t.metrics))
	for id, m := range t.metrics {
		out[id] = float64(m.TotalDuration) / float64(total) * 100.0
	}
	return out
}

// Uptime reports how long this tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
