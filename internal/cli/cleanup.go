package cli

import (
	"context"
	"fmt"

	"github.com/heedware/heed/internal/storage"
)

// Execute implements the go-flags Commander interface for CleanupCommand.
func (c *CleanupCommand) Execute(args []string) error {
	cfg, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	days := c.Days
	if days <= 0 {
		days = cfg.Retention.Days
	}

	return c.executeWithStore(store, days)
}

// executeWithStore runs cleanup against a provided store (used by tests).
func (c *CleanupCommand) executeWithStore(store storage.Store, days int) error {
	removed, err := store.Cleanup(context.Background(), days)
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	fmt.Printf("Removed %d metric record(s) older than %d days\n", removed, days)
	return nil
}
