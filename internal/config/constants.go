package config

import "time"

// Application constants
const (
	AppName = "Course Report"

	// EnvPrefix namespaces every environment variable, e.g. CR_SERVER_PORT
	EnvPrefix = "CR"

	// ConfigFileEnv points at an explicit YAML configuration file
	ConfigFileEnv = "CR_CONFIG_FILE"

	DefaultPort           = 8080
	DefaultMaxUploadBytes = 50 << 20

	DefaultCacheTTL        = 30 * time.Minute
	DefaultCacheMaxEntries = 16
	DefaultSessionIdleTTL  = time.Hour

	// Rate limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40
)
