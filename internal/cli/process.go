package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/heedware/heed/internal/config"
	"github.com/heedware/heed/internal/content"
	"github.com/heedware/heed/internal/processor"
)

// Execute implements the go-flags Commander interface for ProcessCommand.
func (c *ProcessCommand) Execute(args []string) error {
	if c.Text == "" {
		return fmt.Errorf("--text is required for process command")
	}

	cfg, store, db, err := openConfiguredStore(c.globals)
	if err != nil {
		return err
	}
	defer store.Close()
	defer db.Close()

	proc := processor.New(store)
	if err := proc.LoadRules(context.Background()); err != nil {
		return err
	}

	return c.executeWithProcessor(proc, cfg)
}

// executeWithProcessor runs the process logic against a provided
// processor (used by tests).
func (c *ProcessCommand) executeWithProcessor(proc *processor.Processor, cfg *config.Config) error {
	id := c.ID
	if id == "" {
		id = ulid.Make().String()
	}

	duration := c.Duration
	if duration < 0 {
		duration = cfg.Processing.DefaultViewDurationMs
	}

	metadata, err := parseMetadata(c.Meta)
	if err != nil {
		return err
	}

	unit := &content.Content{
		ID:           id,
		Text:         c.Text,
		ViewDuration: duration,
		Metadata:     metadata,
	}

	processed, err := proc.ProcessContent(context.Background(), unit)
	if err != nil {
		return fmt.Errorf("processing content: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"id":       id,
			"filtered": processed == nil,
		}
		if processed != nil {
			out["text"] = processed.Text
			out["flags"] = processed.Flags
			out["view_duration"] = processed.ViewDuration
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if processed == nil {
		fmt.Printf("Content %s was filtered out by rules\n", id)
		return nil
	}

	fmt.Printf("Processed content %s\n", processed.ID)
	fmt.Printf("  Text: %s\n", processed.Text)
	fmt.Printf("  Duration: %s\n", formatMilliseconds(processed.ViewDuration))
	if len(processed.Flags) > 0 {
		fmt.Printf("  Flags: %s\n", strings.Join(processed.Flags, ", "))
	}

	return nil
}

// parseMetadata converts repeated key=value flags into a map.
func parseMetadata(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q (expected key=value)", entry)
		}
		out[key] = value
	}
	return out, nil
}
