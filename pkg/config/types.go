package config

// Config represents the persistent amber configuration stored as
// config.toml. The TOML layout uses sections for logical grouping; every
// section maps onto one constructed tier or component handle.
type Config struct {
	Version     int               `mapstructure:"version"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Cache       CacheConfig       `mapstructure:"cache"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Events      EventsConfig      `mapstructure:"events"`
	API         APIConfig         `mapstructure:"api"`
	Extract     ExtractConfig     `mapstructure:"extract"`
}

// StorageConfig holds durable-store settings.
type StorageConfig struct {
	// Provider selects the durable backend: "sqlite" or "postgres".
	Provider string `mapstructure:"provider"`

	// SQLitePath is the database file path for the sqlite provider.
	SQLitePath string `mapstructure:"sqlite_path"`

	// PostgresDSN is the connection string for the postgres provider.
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// CacheConfig holds fast-cache settings.
type CacheConfig struct {
	// Provider selects the cache backend. Only "local" is built in;
	// "none" disables the cache tier.
	Provider string `mapstructure:"provider"`

	// TTLHours is the cache entry lifetime in hours.
	TTLHours int `mapstructure:"ttl_hours"`
}

// VectorStoreConfig holds semantic-index settings.
type VectorStoreConfig struct {
	// Provider selects the index backend: "sqlite", "qdrant", or "none".
	Provider string `mapstructure:"provider"`

	// Target is the database path (sqlite) or gRPC address (qdrant).
	Target string `mapstructure:"target"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Target     string `mapstructure:"target"`
	Model      string `mapstructure:"model"`
	Dimensions uint   `mapstructure:"dimensions"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	// Provider selects the publisher: "kafka" or "none".
	Provider string   `mapstructure:"provider"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `mapstructure:"listen"`
}

// ExtractConfig holds the tunable cue lexicons for boundary extension and
// extended-context detection. Empty lists use the built-in defaults.
type ExtractConfig struct {
	BeginCues      []string `mapstructure:"begin_cues"`
	EndCues        []string `mapstructure:"end_cues"`
	TopicShiftCues []string `mapstructure:"topic_shift_cues"`
	BackRefCues    []string `mapstructure:"back_ref_cues"`
}
