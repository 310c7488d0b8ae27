package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "STOCKTALLY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STOCKTALLY_DB_DSN"
	EnvDBHost = "STOCKTALLY_DB_HOST"
	EnvDBUser = "STOCKTALLY_DB_USER"
	EnvDBName = "STOCKTALLY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
