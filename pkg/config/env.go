package config

// EnvPrefix is handed to envconfig; every field carries an explicit name so
// the prefix only matters for untagged additions.
const EnvPrefix = "QUOTEDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "QUOTEDESK_APP_ENV"
	EnvPort         = "QUOTEDESK_APP_PORT"
	EnvDatabaseURL  = "QUOTEDESK_DATABASE_URL"
	EnvDBHost       = "QUOTEDESK_DB_HOST"
	EnvDBUser       = "QUOTEDESK_DB_USER"
	EnvDBName       = "QUOTEDESK_DB_NAME"
	EnvDBPassword   = "QUOTEDESK_DB_PASSWORD"
	EnvRedisURL     = "QUOTEDESK_REDIS_URL"
	EnvAuthSecret   = "QUOTEDESK_AUTH_SECRET"
	EnvSessionTTL   = "QUOTEDESK_SESSION_TTL"
	EnvCORSOrigins  = "QUOTEDESK_CORS_ORIGINS"
	EnvStorageURL   = "QUOTEDESK_STORAGE_ENDPOINT"
	EnvStorageKey   = "QUOTEDESK_STORAGE_ACCESS_KEY"
	EnvStorageToken = "QUOTEDESK_STORAGE_SECRET_KEY"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
