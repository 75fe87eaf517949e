package config

const (
	// StorageDriverSQLite stores the audit log in a SQLite file.
	StorageDriverSQLite = "sqlite"

	// StorageDriverPostgres stores the audit log in PostgreSQL.
	StorageDriverPostgres = "postgres"

	// StorageDriverMemory keeps the audit log in process memory.
	StorageDriverMemory = "memory"
)

const (
	defaultStorageDriver = StorageDriverSQLite
	defaultSQLitePath    = "history.db"
	defaultAPIListen     = ":8080"

	defaultPrivateKeyPath = "private_key.pem"
	defaultPublicKeyPath  = "public_key.pem"
	defaultHistoryPath    = "secure_history.enc"

	defaultKafkaTopic = "measures.conversions"

	defaultNumWorkers = 3
	defaultQueueSize  = 256
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Keys: KeysConfig{
			PrivateKeyPath: defaultPrivateKeyPath,
			PublicKeyPath:  defaultPublicKeyPath,
		},
		History: HistoryConfig{
			Path: defaultHistoryPath,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
		Worker: WorkerConfig{
			NumWorkers: defaultNumWorkers,
			QueueSize:  defaultQueueSize,
		},
	}
}

// IsValidStorageDriver reports whether name is a supported storage.driver value.
func IsValidStorageDriver(name string) bool {
	switch name {
	case StorageDriverSQLite, StorageDriverPostgres, StorageDriverMemory:
		return true
	default:
		return false
	}
}
