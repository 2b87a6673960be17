package config

import "slices"

// validKeys are the dotted configuration keys recognized by the CLI.
var validKeys = []string{
	"storage.provider",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"cache.provider",
	"cache.ttl_hours",
	"vector_store.provider",
	"vector_store.target",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"events.provider",
	"events.brokers",
	"events.topic",
	"api.listen",
	"extract.begin_cues",
	"extract.end_cues",
	"extract.topic_shift_cues",
	"extract.back_ref_cues",
}

// ValidConfigKeys returns the dotted keys recognized by the CLI.
func ValidConfigKeys() []string {
	return slices.Clone(validKeys)
}

// IsValidConfigKey reports whether key is a recognized config key.
func IsValidConfigKey(key string) bool {
	return slices.Contains(validKeys, key)
}
