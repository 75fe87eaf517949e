package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent measures configuration stored as
// config.toml in the .measures/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Keys        KeysConfig        `toml:"keys"`
	History     HistoryConfig     `toml:"history"`
	EventStream EventStreamConfig `toml:"eventstream"`
	Worker      WorkerConfig      `toml:"worker"`
}

// StorageConfig holds audit log settings.
type StorageConfig struct {
	// Driver selects the audit log backend: "sqlite", "postgres" or "memory".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen       string `toml:"listen,omitempty"`
	AllowOrigins string `toml:"allow_origins,omitempty"`
}

// KeysConfig holds the RSA key pair locations. Relative paths resolve
// against the .measures/ directory.
type KeysConfig struct {
	PrivateKeyPath string `toml:"private_key_path,omitempty"`
	PublicKeyPath  string `toml:"public_key_path,omitempty"`
}

// HistoryConfig holds the encrypted history file location.
type HistoryConfig struct {
	Path string `toml:"path,omitempty"`
}

// EventStreamConfig holds conversion event publishing settings.
// Events are only published when KafkaBrokers is set.
type EventStreamConfig struct {
	// KafkaBrokers is a comma separated list of host:port addresses.
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// WorkerConfig sizes the event publishing worker pool.
type WorkerConfig struct {
	NumWorkers uint `toml:"num_workers,omitempty"`
	QueueSize  uint `toml:"queue_size,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if !IsValidStorageDriver(v) {
				return fmt.Errorf("invalid value for storage.driver: %q (available: %s, %s, %s)",
					v, StorageDriverSQLite, StorageDriverPostgres, StorageDriverMemory)
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.allow_origins": {
		get: func(c *Config) string { return c.API.AllowOrigins },
		set: func(c *Config, v string) error { c.API.AllowOrigins = v; return nil },
	},
	"keys.private_key_path": {
		get: func(c *Config) string { return c.Keys.PrivateKeyPath },
		set: func(c *Config, v string) error { c.Keys.PrivateKeyPath = v; return nil },
	},
	"keys.public_key_path": {
		get: func(c *Config) string { return c.Keys.PublicKeyPath },
		set: func(c *Config, v string) error { c.Keys.PublicKeyPath = v; return nil },
	},
	"history.path": {
		get: func(c *Config) string { return c.History.Path },
		set: func(c *Config, v string) error { c.History.Path = v; return nil },
	},
	"eventstream.kafka_brokers": {
		get: func(c *Config) string { return c.EventStream.KafkaBrokers },
		set: func(c *Config, v string) error { c.EventStream.KafkaBrokers = v; return nil },
	},
	"eventstream.kafka_topic": {
		get: func(c *Config) string { return c.EventStream.KafkaTopic },
		set: func(c *Config, v string) error { c.EventStream.KafkaTopic = v; return nil },
	},
	"worker.num_workers": uintKey("worker.num_workers", func(c *Config) *uint { return &c.Worker.NumWorkers }),
	"worker.queue_size":  uintKey("worker.queue_size", func(c *Config) *uint { return &c.Worker.QueueSize }),
}
