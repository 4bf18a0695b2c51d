package config

// EnvPrefix is passed to envconfig; every field carries an explicit
// envconfig tag so the prefix only matters for unnamed fields.
const EnvPrefix = "CARBON"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
	AppEnvTest = "test"
)

const (
	EnvAppEnv      = "CARBON_APP_ENV"
	EnvPort        = "CARBON_APP_PORT"
	EnvLogLevel    = "CARBON_LOG_LEVEL"
	EnvDBDSN       = "CARBON_DB_DSN"
	EnvDBHost      = "CARBON_DB_HOST"
	EnvDBPort      = "CARBON_DB_PORT"
	EnvDBUser      = "CARBON_DB_USER"
	EnvDBPassword  = "CARBON_DB_PASSWORD"
	EnvDBName      = "CARBON_DB_NAME"
	EnvRedisURL    = "CARBON_REDIS_URL"
	EnvUseSQLite   = "CARBON_USE_SQLITE"
	EnvCORSOrigins = "CARBON_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
