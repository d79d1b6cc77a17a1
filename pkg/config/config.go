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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Payments     PaymentsConfig
	Worker       WorkerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RINKREG_APP_ENV" required:"true"`
	Port         string `envconfig:"RINKREG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RINKREG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RINKREG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"RINKREG_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RINKREG_DB_DSN"`
	Driver string `envconfig:"RINKREG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RINKREG_DB_HOST"`
	LegacyPort     int    `envconfig:"RINKREG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RINKREG_DB_USER"`
	LegacyPassword string `envconfig:"RINKREG_DB_PASSWORD"`
	LegacyName     string `envconfig:"RINKREG_DB_NAME"`
	LegacySSLMode  string `envconfig:"RINKREG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RINKREG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RINKREG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RINKREG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RINKREG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RINKREG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RINKREG_REDIS_ADDR"`
	Password     string        `envconfig:"RINKREG_REDIS_PASSWORD"`
	DB           int           `envconfig:"RINKREG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RINKREG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RINKREG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RINKREG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RINKREG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RINKREG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RINKREG_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RINKREG_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"RINKREG_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"RINKREG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"RINKREG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	RegistrationTopic        string `envconfig:"RINKREG_PUBSUB_REGISTRATION_TOPIC" default:"rr-registration-events"`
	RegistrationSubscription string `envconfig:"RINKREG_PUBSUB_REGISTRATION_SUBSCRIPTION"`
	AccountingTopic          string `envconfig:"RINKREG_PUBSUB_ACCOUNTING_TOPIC" default:"rr-accounting-events"`
	AccountingSubscription   string `envconfig:"RINKREG_PUBSUB_ACCOUNTING_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RINKREG_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RINKREG_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RINKREG_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PaymentsConfig struct {
	MaxInstallments    int           `envconfig:"RINKREG_PAYMENTS_MAX_INSTALLMENTS" default:"12"`
	InstallmentCadence time.Duration `envconfig:"RINKREG_PAYMENTS_INSTALLMENT_CADENCE" default:"720h"`
	ChargeBatchSize    int           `envconfig:"RINKREG_PAYMENTS_CHARGE_BATCH_SIZE" default:"100"`
}

type WorkerConfig struct {
	CronInterval         time.Duration `envconfig:"RINKREG_WORKER_CRON_INTERVAL" default:"15m"`
	LockTTL              time.Duration `envconfig:"RINKREG_WORKER_LOCK_TTL" default:"30m"`
	OutboxRetentionDays  int           `envconfig:"RINKREG_WORKER_OUTBOX_RETENTION_DAYS" default:"30"`
	OutboxMinDLQAttempts int           `envconfig:"RINKREG_WORKER_OUTBOX_MIN_DLQ_ATTEMPTS" default:"5"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
