// Package config is the YAML-driven configuration surface for the
// tablestore process: table layout, planner concurrency, commit
// coordination, logging, and the admin HTTP surface.
package config

// Config is the root configuration struct, matching this repo's
// yaml-tagged Config-with-Default() pattern.
type Config struct {
	Table   TableConfig   `yaml:"table"`
	Scan    ScanConfig    `yaml:"scan"`
	Commit  CommitConfig  `yaml:"commit"`
	Logging LoggingConfig `yaml:"logging"`
	Admin   AdminConfig   `yaml:"admin"`
}

// TableConfig locates the table root and names its partition fields.
type TableConfig struct {
	RootPath         string   `yaml:"root_path"`
	PartitionFields  []string `yaml:"partition_fields"`
	BlockCompression string   `yaml:"block_compression"` // "none" | "zstd"
}

// ScanConfig sizes the planner's manifest-read worker pool.
type ScanConfig struct {
	ManifestReadConcurrency int `yaml:"manifest_read_concurrency"`
}

// CommitConfig selects and configures the commit coordinator.
type CommitConfig struct {
	Coordinator         string   `yaml:"coordinator"` // "local" | "zookeeper"
	ZooKeeperServers    []string `yaml:"zookeeper_servers"`
	ZooKeeperSessionSec int      `yaml:"zookeeper_session_seconds"`
	LockPath            string   `yaml:"lock_path"`
	IdempotencyLookback int      `yaml:"idempotency_lookback"`
}

// LoggingConfig controls the process-global slog logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	JSON  bool   `yaml:"json"`
}

// AdminConfig controls the read-only admin HTTP surface.
type AdminConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// Default returns a baseline configuration usable without a config file, in
// the spirit of this repo's Default() constructors.
func Default() Config {
	return Config{
		Table: TableConfig{
			RootPath:         "./data/table",
			BlockCompression: "zstd",
		},
		Scan: ScanConfig{
			ManifestReadConcurrency: 8,
		},
		Commit: CommitConfig{
			Coordinator:         "local",
			ZooKeeperSessionSec: 5,
			LockPath:            "/tablestore/commit-lock",
			IdempotencyLookback: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
			JSON:  false,
		},
		Admin: AdminConfig{
			HTTPPort: 8080,
		},
	}
}
