package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/heedware/heed/internal/attention"
	"github.com/heedware/heed/internal/storage"
)

// metricsJSON is the JSON output structure for a single metrics record.
type metricsJSON struct {
	ContentID       string  `json:"content_id"`
	TotalDuration   int64   `json:"total_duration"`
	Interactions    int64   `json:"interactions"`
	LastInteraction string  `json:"last_interaction"`
	CreatedAt       string  `json:"created_at"`
	Share           float64 `json:"share_percent,omitempty"`
}

// Execute implements the go-flags Commander interface for MetricsCommand.
func (c *MetricsCommand) Execute(args []string) error {
	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	return c.executeWithStore(store)
}

// executeWithStore runs metrics display against a provided store (used by tests).
func (c *MetricsCommand) executeWithStore(store storage.Store) error {
	ctx := context.Background()

	if c.ID != "" {
		return c.showSingle(ctx, store)
	}
	return c.showList(ctx, store)
}

func (c *MetricsCommand) showSingle(ctx context.Context, store storage.Store) error {
	m, err := store.GetMetrics(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("get metrics: %w", err)
	}
	if m == nil {
		fmt.Printf("No metrics found for content %s\n", c.ID)
		return nil
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(toMetricsJSON(m, 0))
	}

	fmt.Printf("Metrics for content %s\n", m.ContentID)
	fmt.Printf("  Duration: %s\n", formatMilliseconds(m.TotalDuration))
	fmt.Printf("  Interactions: %d\n", m.Interactions)
	fmt.Printf("  Last interaction: %s\n", m.LastInteraction.Local().Format(time.RFC3339))
	fmt.Printf("  First tracked: %s\n", m.CreatedAt.Local().Format(time.RFC3339))
	return nil
}

func (c *MetricsCommand) showList(ctx context.Context, store storage.Store) error {
	metrics, err := store.GetAllMetrics(ctx)
	if err != nil {
		return fmt.Errorf("get metrics: %w", err)
	}

	// Distribution shares are computed over the full stored set before
	// truncating to the requested count.
	var total int64
	for _, m := range metrics {
		total += m.TotalDuration
	}

	if c.Top > 0 && len(metrics) > c.Top {
		metrics = metrics[:c.Top]
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]metricsJSON, len(metrics))
		for i := range metrics {
			out[i] = toMetricsJSON(&metrics[i], share(metrics[i].TotalDuration, total))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(metrics) == 0 {
		fmt.Println("No metrics tracked yet")
		return nil
	}

	fmt.Printf("Most recent content (%d shown):\n", len(metrics))
	for _, m := range metrics {
		fmt.Printf("Content: %s\n", m.ContentID)
		fmt.Printf("  Duration: %s\n", formatMilliseconds(m.TotalDuration))
		fmt.Printf("  Interactions: %d\n", m.Interactions)
		if c.Distribution && total > 0 {
			fmt.Printf("  Share: %.1f%%\n", share(m.TotalDuration, total))
		}
		fmt.Println()
	}
	return nil
}

func share(duration, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(duration) / float64(total) * 100.0
}

func toMetricsJSON(m *attention.Metrics, sharePct float64) metricsJSON {
	return metricsJSON{
		ContentID:       m.ContentID,
		TotalDuration:   m.TotalDuration,
		Interactions:    m.Interactions,
		LastInteraction: m.LastInteraction.UTC().Format(time.RFC3339),
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
		Share:           sharePct,
	}
}
