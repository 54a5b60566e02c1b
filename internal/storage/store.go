package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heedware/heed/internal/attention"
	"github.com/heedware/heed/internal/content"
)

// Store defines the interface for heed data operations. Lookups for
// identifiers that don't exist return nil results, not errors.
type Store interface {
	SaveMetrics(ctx context.Context, contentID string, m *attention.Metrics) error
	GetMetrics(ctx context.Context, contentID string) (*attention.Metrics, error)
	GetAllMetrics(ctx context.Context) ([]attention.Metrics, error)
	SaveRule(ctx context.Context, rule *content.Rule) error
	GetRule(ctx context.Context, id string) (*content.Rule, error)
	GetAllRules(ctx context.Context) ([]content.Rule, error)
	DeleteRule(ctx context.Context, id string) (bool, error)
	Cleanup(ctx context.Context, daysToKeep int) (int64, error)
	ExportMetrics(ctx context.Context, path string) error
	ImportMetrics(ctx context.Context, path string) (int, error)
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertMetrics *sql.Stmt
	getMetrics    *sql.Stmt
	upsertRule    *sql.Stmt
	getRule       *sql.Stmt
	deleteRule    *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertMetrics, err = s.db.Prepare(`
		INSERT OR REPLACE INTO metrics
		(content_id, total_duration, interactions, last_interaction, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getMetrics, err = s.db.Prepare(`
		SELECT content_id, total_duration, interactions, last_interaction, created_at
		FROM metrics WHERE content_id = ?
	`)
	if err != nil {
		return err
	}

	s.upsertRule, err = s.db.Prepare(`
		INSERT OR REPLACE INTO rules (id, condition, action, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getRule, err = s.db.Prepare(`
		SELECT id, condition, action FROM rules WHERE id = ?
	`)
	if err != nil {
		return err
	}

	s.deleteRule, err = s.db.Prepare(`DELETE FROM rules WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// SaveMetrics upserts the metrics row for contentID. The passed record
// replaces the stored one wholesale; there is no merge.
func (s *SQLiteStore) SaveMetrics(ctx context.Context, contentID string, m *attention.Metrics) error {
	_, err := s.upsertMetrics.ExecContext(ctx,
		contentID, m.TotalDuration, m.Interactions,
		m.LastInteraction.Unix(), m.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save metrics for %s: %w", contentID, err)
	}
	return nil
}

// GetMetrics retrieves the metrics for contentID, or nil if untracked.
func (s *SQLiteStore) GetMetrics(ctx context.Context, contentID string) (*attention.Metrics, error) {
	var rec metricRecord
	err := s.getMetrics.QueryRowContext(ctx, contentID).Scan(
		&rec.ContentID, &rec.TotalDuration, &rec.Interactions,
		&rec.LastInteraction, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get metrics for %s: %w", contentID, err)
	}
	m := rec.toMetrics()
	return &m, nil
}

// GetAllMetrics returns every metrics row, most recently interacted first.
func (s *SQLiteStore) GetAllMetrics(ctx context.Context) ([]attention.Metrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_id, total_duration, interactions, last_interaction, created_at
		FROM metrics
		ORDER BY last_interaction DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	metrics := []attention.Metrics{}
	for rows.Next() {
		var rec metricRecord
		if err := rows.Scan(
			&rec.ContentID, &rec.TotalDuration, &rec.Interactions,
			&rec.LastInteraction, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		metrics = append(metrics, rec.toMetrics())
	}
	return metrics, rows.Err()
}

// SaveRule upserts a rule. Condition and action are stored as JSON
// documents. Both created_at and updated_at are set to now on every
// save, so updating a rule loses its original creation time.
func (s *SQLiteStore) SaveRule(ctx context.Context, rule *content.Rule) error {
	condJSON, err := json.Marshal(rule.Condition)
	if err != nil {
		return fmt.Errorf("encode condition for rule %s: %w", rule.ID, err)
	}
	actionJSON, err := json.Marshal(rule.Action)
	if err != nil {
		return fmt.Errorf("encode action for rule %s: %w", rule.ID, err)
	}

	now := time.Now().Unix()
	_, err = s.upsertRule.ExecContext(ctx, rule.ID, string(condJSON), string(actionJSON), now, now)
	if err != nil {
		return fmt.Errorf("save rule %s: %w", rule.ID, err)
	}
	return nil
}

// GetRule retrieves a rule by ID, or nil if absent. A rule whose stored
// condition or action no longer decodes is an error, not a skip.
func (s *SQLiteStore) GetRule(ctx context.Context, id string) (*content.Rule, error) {
	var ruleID, condJSON, actionJSON string
	err := s.getRule.QueryRowContext(ctx, id).Scan(&ruleID, &condJSON, &actionJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule %s: %w", id, err)
	}
	return decodeRule(ruleID, condJSON, actionJSON)
}

// GetAllRules returns every stored rule, most recently updated first.
func (s *SQLiteStore) GetAllRules(ctx context.Context) ([]content.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, condition, action FROM rules
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	rules := []content.Rule{}
	for rows.Next() {
		var id, condJSON, actionJSON string
		if err := rows.Scan(&id, &condJSON, &actionJSON); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		rule, err := decodeRule(id, condJSON, actionJSON)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

// decodeRule rebuilds the tagged condition/action variants from their
// stored JSON.
func decodeRule(id, condJSON, actionJSON string) (*content.Rule, error) {
	rule := &content.Rule{ID: id}
	if err := json.Unmarshal([]byte(condJSON), &rule.Condition); err != nil {
		return nil, fmt.Errorf("decode condition for rule %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(actionJSON), &rule.Action); err != nil {
		return nil, fmt.Errorf("decode action for rule %s: %w", id, err)
	}
	return rule, nil
}

// DeleteRule removes a rule by ID. Returns whether a row was deleted.
func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) (bool, error) {
	res, err := s.deleteRule.ExecContext(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete rule %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Cleanup deletes metrics whose last interaction predates now minus
// daysToKeep days. Irreversible. Returns the number of rows removed.
func (s *SQLiteStore) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	cutoff := time.Now().Unix() - int64(daysToKeep)*24*60*60

	res, err := s.db.ExecContext(ctx, "DELETE FROM metrics WHERE last_interaction < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup metrics: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns aggregate statistics about the database.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM metrics").Scan(&stats.TotalMetrics)
	if err != nil {
		return nil, fmt.Errorf("count metrics: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rules").Scan(&stats.TotalRules)
	if err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	if stats.TotalMetrics > 0 {
		var oldest, newest int64
		err = s.db.QueryRowContext(ctx,
			"SELECT MIN(last_interaction), MAX(last_interaction) FROM metrics",
		).Scan(&oldest, &newest)
		if err != nil {
			return nil, fmt.Errorf("interaction time range: %w", err)
		}
		stats.OldestInteraction = time.Unix(oldest, 0)
		stats.NewestInteraction = time.Unix(newest, 0)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content_id, total_duration FROM metrics
		ORDER BY total_duration DESC LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top content: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cd ContentDuration
		if err := rows.Scan(&cd.ContentID, &cd.TotalDuration); err != nil {
			return nil, err
		}
		stats.TopContent = append(stats.TopContent, cd)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is
// NOT closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.upsertMetrics, s.getMetrics,
		s.upsertRule, s.getRule, s.deleteRule,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

// toMetrics converts a durable row to the in-memory representation.
// Persisted timestamps carry second granularity only.
func (r metricRecord) toMetrics() attention.Metrics {
	return attention.Metrics{
		ContentID:       r.ContentID,
		TotalDuration:   r.TotalDuration,
		Interactions:    r.Interactions,
		LastInteraction: time.Unix(r.LastInteraction, 0),
		CreatedAt:       time.Unix(r.CreatedAt, 0),
	}
}
