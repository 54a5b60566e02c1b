// Package processor composes the rule filter, attention tracker, and
// durable store into the content pipeline the CLI drives.
package processor

import (
	"context"
	"fmt"

	"github.com/heedware/heed/internal/attention"
	"github.com/heedware/heed/internal/content"
	"github.com/heedware/heed/internal/storage"
)

// Processor runs content through the rule filter, tracks attention for
// survivors, and keeps the store in sync. The filter and tracker lock
// internally; no lock is ever held across store I/O.
type Processor struct {
	filter  *content.Filter
	tracker *attention.Tracker
	store   storage.Store
}

// New creates a Processor with an empty live filter and tracker on top
// of store. Call LoadRules to hydrate the filter from storage.
func New(store storage.Store) *Processor {
	return &Processor{
		filter:  content.NewFilter(),
		tracker: attention.NewTracker(),
		store:   store,
	}
}

// LoadRules hydrates the live filter from the stored rule set. Rules
// enter the filter in the store's listing order (most recently updated
// first), which becomes their evaluation order for this process.
func (p *Processor) LoadRules(ctx context.Context) error {
	rules, err := p.store.GetAllRules(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	for i := range rules {
		if err := p.filter.AddRule(rules[i]); err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}
	return nil
}

// ProcessContent runs one content unit through the pipeline. A nil
// result with nil error means the content was dropped by a filter
// rule; metrics are not touched in that case. For survivors the
// tracker is updated and the refreshed record is persisted before
// returning. On a persistence failure the in-memory tracker mutation
// is not rolled back; the durable view catches up on the next
// successful write.
func (p *Processor) ProcessContent(ctx context.Context, c *content.Content) (*content.Content, error) {
	processed, err := p.filter.Process(c)
	if err != nil {
		return nil, err
	}
	if processed == nil {
		return nil, nil
	}

	p.tracker.Track(processed.ID, processed.ViewDuration)
	if m := p.tracker.Get(processed.ID); m != nil {
		if err := p.store.SaveMetrics(ctx, processed.ID, m); err != nil {
			return nil, err
		}
	}
	return processed, nil
}

// AddRule adds a rule to the live filter, then persists it. A rule the
// filter rejects (bad pattern, unknown tag) is never stored.
func (p *Processor) AddRule(ctx context.Context, rule content.Rule) error {
	if err := p.filter.AddRule(rule); err != nil {
		return err
	}
	return p.store.SaveRule(ctx, &rule)
}

// RemoveRule removes a rule from the live filter and the store.
// Returns whether the rule existed in either.
func (p *Processor) RemoveRule(ctx context.Context, id string) (bool, error) {
	removed := p.filter.RemoveRule(id)
	deleted, err := p.store.DeleteRule(ctx, id)
	if err != nil {
		return removed != nil, err
	}
	return removed != nil || deleted, nil
}

// GetMetrics reads the stored metrics for contentID; nil when untracked.
func (p *Processor) GetMetrics(ctx context.Context, contentID string) (*attention.Metrics, error) {
	return p.store.GetMetrics(ctx, contentID)
}

// GetAllMetrics reads all stored metrics, most recent first.
func (p *Processor) GetAllMetrics(ctx context.Context) ([]attention.Metrics, error) {
	return p.store.GetAllMetrics(ctx)
}

// GetRules reads all stored rules, most recently updated first. The
// store, not the live filter, is the source of truth for listings.
func (p *Processor) GetRules(ctx context.Context) ([]content.Rule, error) {
	return p.store.GetAllRules(ctx)
}

// Cleanup deletes stored metrics older than daysToKeep days.
func (p *Processor) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	return p.store.Cleanup(ctx, daysToKeep)
}

// ExportMetrics writes the stored metrics set to a JSON file.
func (p *Processor) ExportMetrics(ctx context.Context, path string) error {
	return p.store.ExportMetrics(ctx, path)
}

// ImportMetrics merges a JSON export file into the store.
func (p *Processor) ImportMetrics(ctx context.Context, path string) (int, error) {
	return p.store.ImportMetrics(ctx, path)
}

// Tracker exposes the in-memory aggregator (the fast path populated
// during ProcessContent).
func (p *Processor) Tracker() *attention.Tracker {
	return p.tracker
}
