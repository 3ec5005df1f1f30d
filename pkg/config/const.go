package config

// EnvPrefix is the envconfig prefix shared by every section.
const EnvPrefix = "KITLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "KITLINE_APP_ENV"
	EnvPort     = "KITLINE_APP_PORT"
	EnvRedisURL = "KITLINE_REDIS_URL"

	EnvDBDSN  = "KITLINE_DB_DSN"
	EnvDBHost = "KITLINE_DB_HOST"
	EnvDBUser = "KITLINE_DB_USER"
	EnvDBName = "KITLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
