package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ExportMetrics writes the full metrics set to path as a JSON array of
// records with the same field set as the durable schema.
func (s *SQLiteStore) ExportMetrics(ctx context.Context, path string) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_id, total_duration, interactions, last_interaction, created_at
		FROM metrics
		ORDER BY last_interaction DESC
	`)
	if err != nil {
		return fmt.Errorf("query metrics for export: %w", err)
	}
	defer rows.Close()

	records := []metricRecord{}
	for rows.Next() {
		var rec metricRecord
		if err := rows.Scan(
			&rec.ContentID, &rec.TotalDuration, &rec.Interactions,
			&rec.LastInteraction, &rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan metrics for export: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// ImportMetrics reads a JSON export file and upserts each record by
// content ID. Existing records not present in the file are left
// untouched; import merges, it never clears.
func (s *SQLiteStore) ImportMetrics(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}

	var records []metricRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("decode import file: %w", err)
	}

	for _, rec := range records {
		_, err := s.upsertMetrics.ExecContext(ctx,
			rec.ContentID, rec.TotalDuration, rec.Interactions,
			rec.LastInteraction, rec.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("import metrics for %s: %w", rec.ContentID, err)
		}
	}
	return len(records), nil
}
