package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --private-key
// on "measures serve", "measures keys init" and "measures history show").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagAllowOrigins   = "allow-origins"
	FlagStorageDriver  = "storage"
	FlagSQLite         = "sqlite"
	FlagPostgres       = "postgres"
	FlagPrivateKey     = "private-key"
	FlagPublicKey      = "public-key"
	FlagHistoryPath    = "history-file"
	FlagKafkaBrokers   = "kafka-brokers"
	FlagKafkaTopic     = "kafka-topic"
	FlagWorkers        = "workers"
	FlagWorkerQueueCap = "queue-size"
)

// Flags is the registry of every flag measures commands share.
var Flags = FlagSet{
	FlagListen:         {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAllowOrigins:   {Name: "allow-origins", ViperKey: "api.allow_origins", Description: "Comma separated CORS origins (default: all)"},
	FlagStorageDriver:  {Name: "storage", ViperKey: "storage.driver", Description: "Audit log backend (sqlite, postgres, memory)"},
	FlagSQLite:         {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite audit database"},
	FlagPostgres:       {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string for the audit log"},
	FlagPrivateKey:     {Name: "private-key", ViperKey: "keys.private_key_path", Description: "Path to the PEM encoded RSA private key"},
	FlagPublicKey:      {Name: "public-key", ViperKey: "keys.public_key_path", Description: "Path to the PEM encoded RSA public key"},
	FlagHistoryPath:    {Name: "history-file", ViperKey: "history.path", Description: "Path to the encrypted history file"},
	FlagKafkaBrokers:   {Name: "kafka-brokers", ViperKey: "eventstream.kafka_brokers", Description: "Comma separated Kafka brokers for conversion events"},
	FlagKafkaTopic:     {Name: "kafka-topic", ViperKey: "eventstream.kafka_topic", Description: "Kafka topic for conversion events"},
	FlagWorkers:        {Name: "workers", ViperKey: "worker.num_workers", Description: "Number of event publishing workers"},
	FlagWorkerQueueCap: {Name: "queue-size", ViperKey: "worker.queue_size", Description: "Capacity of the event publishing queue"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
