package cli

import (
	"context"
	"fmt"

	"github.com/heedware/heed/internal/storage"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	if c.Output == "" {
		return fmt.Errorf("--output is required for export command")
	}

	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	return c.executeWithStore(store)
}

// executeWithStore runs export against a provided store (used by tests).
func (c *ExportCommand) executeWithStore(store storage.Store) error {
	if err := store.ExportMetrics(context.Background(), c.Output); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Printf("Exported metrics to %s\n", c.Output)
	return nil
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	if c.Input == "" {
		return fmt.Errorf("--input is required for import command")
	}

	_, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	return c.executeWithStore(store)
}

// executeWithStore runs import against a provided store (used by tests).
func (c *ImportCommand) executeWithStore(store storage.Store) error {
	count, err := store.ImportMetrics(context.Background(), c.Input)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Printf("Imported %d metric record(s) from %s\n", count, c.Input)
	return nil
}
