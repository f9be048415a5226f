package config

const (
	EnvPrefix = "CATALOG"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "CATALOG_APP_ENV"
	EnvPort     = "CATALOG_APP_PORT"
	EnvLogLevel = "CATALOG_LOG_LEVEL"

	EnvDBDSN  = "CATALOG_DB_DSN"
	EnvDBHost = "CATALOG_DB_HOST"
	EnvDBUser = "CATALOG_DB_USER"
	EnvDBName = "CATALOG_DB_NAME"

	EnvRedisURL = "CATALOG_REDIS_URL"

	EnvUseSQLite   = "CATALOG_USE_SQLITE"
	EnvAutoMigrate = "CATALOG_AUTO_MIGRATE"

	EnvGCPProjectID = "CATALOG_GCP_PROJECT_ID"
	EnvGCSBucket    = "CATALOG_GCS_BUCKET_NAME"

	EnvPubSubCatalogTopic = "CATALOG_PUBSUB_CATALOG_TOPIC"
	EnvPubSubCatalogSub   = "CATALOG_PUBSUB_CATALOG_SUBSCRIPTION"

	EnvMaxUploadMB  = "CATALOG_MAX_UPLOAD_MB"
	EnvCronInterval = "CATALOG_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
