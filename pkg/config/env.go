package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so it only
// matters for fields that omit one.
const EnvPrefix = "IOTFARM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartBackendRedis = "redis"
	CartBackendSQL   = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv           = "IOTFARM_APP_ENV"
	EnvPort             = "IOTFARM_APP_PORT"
	EnvRedisURL         = "IOTFARM_REDIS_URL"
	EnvJWTSecret        = "IOTFARM_JWT_SECRET"
	EnvAPIBaseURL       = "IOTFARM_API_BASE_URL"
	EnvCartBackend      = "IOTFARM_CART_BACKEND"
	EnvUseSQLite        = "IOTFARM_USE_SQLITE"
	EnvOrderStatusCodes = "IOTFARM_ORDER_STATUS_CODES"
	EnvAutoCancelDelay  = "IOTFARM_AUTOCANCEL_DELAY"

	EnvDBDSN  = "IOTFARM_DB_DSN"
	EnvDBHost = "IOTFARM_DB_HOST"
	EnvDBUser = "IOTFARM_DB_USER"
	EnvDBName = "IOTFARM_DB_NAME"
)

var splitDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
