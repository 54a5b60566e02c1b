package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/heedware/heed/internal/config"
	"github.com/heedware/heed/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string           `json:"version"`
	DatabasePath      string           `json:"database_path"`
	TotalMetrics      int64            `json:"total_metrics"`
	TotalRules        int64            `json:"total_rules"`
	OldestInteraction string           `json:"oldest_interaction,omitempty"`
	NewestInteraction string           `json:"newest_interaction,omitempty"`
	RetentionDays     int              `json:"retention_days"`
	TopContent        []topContentJSON `json:"top_content"`
}

type topContentJSON struct {
	ContentID     string `json:"content_id"`
	TotalDuration int64  `json:"total_duration"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	return c.executeWithStore(store, cfg)
}

// executeWithStore runs status against a provided store (used by tests).
func (c *StatusCommand) executeWithStore(store storage.Store, cfg *config.Config) error {
	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, dbPath, cfg.Retention.Days)
	}
	return c.printStatusHuman(stats, dbPath, cfg.Retention.Days)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, dbPath string, retentionDays int) error {
	fmt.Println("Heed Status")
	fmt.Println("===========")
	fmt.Printf("Version:    %s\n", c.version)
	fmt.Printf("Database:   %s\n", dbPath)
	fmt.Printf("Metrics:    %d\n", stats.TotalMetrics)
	fmt.Printf("Rules:      %d\n", stats.TotalRules)

	if stats.TotalMetrics > 0 {
		fmt.Printf("Oldest:     %s\n", stats.OldestInteraction.Local().Format("2006-01-02"))
		fmt.Printf("Newest:     %s\n", stats.NewestInteraction.Local().Format("2006-01-02"))
	}

	fmt.Printf("Retention:  %d days\n", retentionDays)

	if len(stats.TopContent) > 0 {
		fmt.Println()
		fmt.Println("Top Content by Duration:")
		for _, tc := range stats.TopContent {
			fmt.Printf("  %-26s %s\n", tc.ContentID, formatMilliseconds(tc.TotalDuration))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, dbPath string, retentionDays int) error {
	out := statusJSON{
		Version:       c.version,
		DatabasePath:  dbPath,
		TotalMetrics:  stats.TotalMetrics,
		TotalRules:    stats.TotalRules,
		RetentionDays: retentionDays,
		TopContent:    make([]topContentJSON, len(stats.TopContent)),
	}

	if stats.TotalMetrics > 0 {
		out.OldestInteraction = stats.OldestInteraction.UTC().Format(time.RFC3339)
		out.NewestInteraction = stats.NewestInteraction.UTC().Format(time.RFC3339)
	}

	for i, tc := range stats.TopContent {
		out.TopContent[i] = topContentJSON{ContentID: tc.ContentID, TotalDuration: tc.TotalDuration}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
