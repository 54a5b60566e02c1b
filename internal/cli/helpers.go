package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/heedware/heed/internal/config"
	"github.com/heedware/heed/internal/storage"
)

// loadConfig resolves the config for a command: an explicit --config
// path must exist; otherwise the default path is loaded, created with
// defaults on first run.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// openStore opens the configured SQLite database, runs migrations, and
// returns a ready-to-use store with the underlying *sql.DB.
func openStore(cfg *config.Config) (*storage.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// openConfiguredStore combines loadConfig and openStore for commands
// that need both.
func openConfiguredStore(globals *GlobalFlags) (*config.Config, *storage.SQLiteStore, *sql.DB, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	store, db, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, store, db, nil
}

// formatMilliseconds renders a millisecond duration for humans.
func formatMilliseconds(ms int64) string {
	switch {
	case ms >= 3600000:
		return fmt.Sprintf("%.1fh", float64(ms)/3600000)
	case ms >= 60000:
		return fmt.Sprintf("%.1fm", float64(ms)/60000)
	case ms >= 1000:
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	default:
		return fmt.Sprintf("%dms", ms)
	}
}
