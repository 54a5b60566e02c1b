package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heedware/heed/internal/attention"
)

func seedMetrics(t *testing.T, store interface {
	SaveMetrics(ctx context.Context, contentID string, m *attention.Metrics) error
}, id string, duration int64, last time.Time) {
	t.Helper()
	require.NoError(t, store.SaveMetrics(context.Background(), id, &attention.Metrics{
		ContentID:       id,
		TotalDuration:   duration,
		Interactions:    1,
		LastInteraction: last,
		CreatedAt:       last,
	}))
}

func TestExportImportCommands_RoundTrip(t *testing.T) {
	source, cleanupSource := testStore(t)
	defer cleanupSource()

	now := time.Now()
	seedMetrics(t, source, "c1", 6000, now)
	seedMetrics(t, source, "c2", 4000, now.Add(-time.Minute))

	path := filepath.Join(t.TempDir(), "metrics.json")
	exportCmd := &ExportCommand{Output: path, globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, exportCmd.executeWithStore(source))
	})
	assert.Contains(t, output, path)

	dest, cleanupDest := testStore(t)
	defer cleanupDest()

	importCmd := &ImportCommand{Input: path, globals: &GlobalFlags{}}
	output = captureOutput(t, func() {
		require.NoError(t, importCmd.executeWithStore(dest))
	})
	assert.Contains(t, output, "Imported 2")

	m, err := dest.GetMetrics(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, int64(6000), m.TotalDuration)
}

func TestCleanupCommand_ReportsRemovedCount(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	now := time.Now()
	seedMetrics(t, store, "stale", 100, now.Add(-90*24*time.Hour))
	seedMetrics(t, store, "fresh", 100, now)

	cmd := &CleanupCommand{globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store, 30))
	})
	assert.Contains(t, output, "Removed 1")

	m, err := store.GetMetrics(context.Background(), "fresh")
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestMetricsCommand_SingleAndList(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	now := time.Now()
	seedMetrics(t, store, "content-1", 6000, now)
	seedMetrics(t, store, "content-2", 4000, now.Add(-time.Minute))

	single := &MetricsCommand{ID: "content-1", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, single.executeWithStore(store))
	})
	assert.Contains(t, output, "content-1")
	assert.Contains(t, output, "Interactions: 1")

	list := &MetricsCommand{Top: 10, Distribution: true, globals: &GlobalFlags{}}
	output = captureOutput(t, func() {
		require.NoError(t, list.executeWithStore(store))
	})
	assert.Contains(t, output, "content-1")
	assert.Contains(t, output, "content-2")
	assert.Contains(t, output, "60.0%")
	assert.Contains(t, output, "40.0%")
}

func TestMetricsCommand_UnknownIDIsNotAnError(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	cmd := &MetricsCommand{ID: "missing", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(store))
	})
	assert.Contains(t, output, "No metrics found")
}
