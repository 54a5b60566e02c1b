package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:       "~/.config/heed",
			SQLiteFile: "heed.db",
		},
		Retention: RetentionConfig{
			Days: 30,
		},
		Processing: ProcessingConfig{
			DefaultViewDurationMs: 0,
		},
	}
}
