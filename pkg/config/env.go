package config

const EnvPrefix = "PARGNE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultSQLiteDSN = "file:pargne.db?_foreign_keys=on"
)

const (
	EnvAppEnv                 = "PARGNE_APP_ENV"
	EnvPort                   = "PARGNE_APP_PORT"
	EnvLogLevel               = "PARGNE_LOG_LEVEL"
	EnvLogFormat              = "PARGNE_LOG_FORMAT"
	EnvDBDSN                  = "PARGNE_DB_DSN"
	EnvDBDriver               = "PARGNE_DB_DRIVER"
	EnvDBHost                 = "PARGNE_DB_HOST"
	EnvDBUser                 = "PARGNE_DB_USER"
	EnvDBName                 = "PARGNE_DB_NAME"
	EnvRedisURL               = "PARGNE_REDIS_URL"
	EnvJWTSecret              = "PARGNE_JWT_SECRET"
	EnvJWTIssuer              = "PARGNE_JWT_ISSUER"
	EnvJWTExpMins             = "PARGNE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PARGNE_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins     = "PARGNE_CORS_ALLOWED_ORIGINS"
)

var hostDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
