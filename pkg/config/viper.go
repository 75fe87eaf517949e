package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/measures/pkg/dotdir"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "MEASURES"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the MEASURES_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (MEASURES_API_LISTEN, MEASURES_HISTORY_PATH, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: MEASURES_API_LISTEN, MEASURES_STORAGE_SQLITE_PATH, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	// API
	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("api.allow_origins", d.API.AllowOrigins)

	// Keys
	v.SetDefault("keys.private_key_path", d.Keys.PrivateKeyPath)
	v.SetDefault("keys.public_key_path", d.Keys.PublicKeyPath)

	// History
	v.SetDefault("history.path", d.History.Path)

	// Event stream
	v.SetDefault("eventstream.kafka_brokers", d.EventStream.KafkaBrokers)
	v.SetDefault("eventstream.kafka_topic", d.EventStream.KafkaTopic)

	// Worker pool
	v.SetDefault("worker.num_workers", d.Worker.NumWorkers)
	v.SetDefault("worker.queue_size", d.Worker.QueueSize)
}

// FromViper snapshots the effective configuration held by v, after flag,
// env, file and default layering.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		API: APIConfig{
			Listen:       v.GetString("api.listen"),
			AllowOrigins: v.GetString("api.allow_origins"),
		},
		Keys: KeysConfig{
			PrivateKeyPath: v.GetString("keys.private_key_path"),
			PublicKeyPath:  v.GetString("keys.public_key_path"),
		},
		History: HistoryConfig{
			Path: v.GetString("history.path"),
		},
		EventStream: EventStreamConfig{
			KafkaBrokers: v.GetString("eventstream.kafka_brokers"),
			KafkaTopic:   v.GetString("eventstream.kafka_topic"),
		},
		Worker: WorkerConfig{
			NumWorkers: v.GetUint("worker.num_workers"),
			QueueSize:  v.GetUint("worker.queue_size"),
		},
	}
}

// KafkaBrokerList splits the comma separated broker list, dropping blanks.
func (c EventStreamConfig) KafkaBrokerList() []string {
	var brokers []string
	for b := range strings.SplitSeq(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
