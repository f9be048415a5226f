package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Cache        CacheConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CATALOG_APP_ENV" required:"true"`
	Port         string `envconfig:"CATALOG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CATALOG_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CATALOG_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CATALOG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"CATALOG_DB_DSN"`
	Driver     string `envconfig:"CATALOG_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"CATALOG_SQLITE_PATH" default:"file:catalog.db?cache=shared"`

	LegacyHost     string `envconfig:"CATALOG_DB_HOST"`
	LegacyPort     int    `envconfig:"CATALOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CATALOG_DB_USER"`
	LegacyPassword string `envconfig:"CATALOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"CATALOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"CATALOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CATALOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CATALOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CATALOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CATALOG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CATALOG_REDIS_ADDR"`
	Password     string        `envconfig:"CATALOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CATALOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CATALOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CATALOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CATALOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CATALOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CATALOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite     bool `envconfig:"CATALOG_USE_SQLITE" default:"false"`
	AutoMigrate   bool `envconfig:"CATALOG_AUTO_MIGRATE" default:"false"`
	ViewsToBQ     bool `envconfig:"CATALOG_FEATURE_VIEWS_BIGQUERY" default:"false"`
	PublishEvents bool `envconfig:"CATALOG_FEATURE_PUBLISH_EVENTS" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CATALOG_CORS_ALLOWED_ORIGINS" default:"*"`
	MaxAgeSeconds  int      `envconfig:"CATALOG_CORS_MAX_AGE" default:"300"`
}

type CacheConfig struct {
	ProductTTL time.Duration `envconfig:"CATALOG_CACHE_PRODUCT_TTL" default:"5m"`
	ViewDedup  time.Duration `envconfig:"CATALOG_VIEW_DEDUP_WINDOW" default:"1h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CATALOG_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CATALOG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CATALOG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"CATALOG_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"CATALOG_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
	KeyPrefix     string `envconfig:"CATALOG_GCS_KEY_PREFIX" default:"media"`
}

type MediaConfig struct {
	MaxUploadMB  int  `envconfig:"CATALOG_MAX_UPLOAD_MB" default:"50"`
	AllowVideos  bool `envconfig:"CATALOG_MEDIA_ALLOW_VIDEOS" default:"true"`
	ListPageSize int  `envconfig:"CATALOG_MEDIA_PAGE_SIZE" default:"24"`
}

// MaxUploadBytes converts the configured megabyte limit into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

type PubSubConfig struct {
	CatalogTopic        string `envconfig:"CATALOG_PUBSUB_CATALOG_TOPIC" required:"true"`
	CatalogSubscription string `envconfig:"CATALOG_PUBSUB_CATALOG_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset    string `envconfig:"CATALOG_BIGQUERY_DATASET" default:"catalog"`
	ViewsTable string `envconfig:"CATALOG_BIGQUERY_VIEWS_TABLE" default:"product_views"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CATALOG_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CATALOG_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CATALOG_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"CATALOG_CRON_INTERVAL" default:"1h"`
	LockTTL             time.Duration `envconfig:"CATALOG_CRON_LOCK_TTL" default:"15m"`
	OutboxRetentionDays int           `envconfig:"CATALOG_OUTBOX_RETENTION_DAYS" default:"30"`
	ViewsRetentionDays  int           `envconfig:"CATALOG_VIEWS_RETENTION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
