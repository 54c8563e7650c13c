// Package constants holds string identifiers shared by config and infra.
package constants

const (
	EnvDevelop = "develop"

	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
	PubSubProviderKafka  = "kafka"

	CacheProviderMemory = "memory"
	CacheProviderRedis  = "redis"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)
