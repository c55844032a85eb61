package config

const (
	EnvPrefix = "SERVIPRO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "SERVIPRO_DB_DSN"
	EnvDBHost = "SERVIPRO_DB_HOST"
	EnvDBUser = "SERVIPRO_DB_USER"
	EnvDBName = "SERVIPRO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
