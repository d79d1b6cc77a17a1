package config

const EnvPrefix = "RINKREG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "RINKREG_APP_ENV"
	EnvPort   = "RINKREG_APP_PORT"

	EnvDBDSN  = "RINKREG_DB_DSN"
	EnvDBHost = "RINKREG_DB_HOST"
	EnvDBUser = "RINKREG_DB_USER"
	EnvDBName = "RINKREG_DB_NAME"

	EnvRedisURL = "RINKREG_REDIS_URL"

	EnvGCPProjectID = "RINKREG_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
