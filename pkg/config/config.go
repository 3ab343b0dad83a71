package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Sync         SyncConfig
	StockLog     StockLogConfig
	PubSub       PubSubConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BILLSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"BILLSTACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BILLSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BILLSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BILLSTACK_DB_DSN"`
	Driver string `envconfig:"BILLSTACK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"BILLSTACK_DB_HOST"`
	Port     int    `envconfig:"BILLSTACK_DB_PORT" default:"5432"`
	User     string `envconfig:"BILLSTACK_DB_USER"`
	Password string `envconfig:"BILLSTACK_DB_PASSWORD"`
	Name     string `envconfig:"BILLSTACK_DB_NAME"`
	SSLMode  string `envconfig:"BILLSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BILLSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BILLSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BILLSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BILLSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// TxMaxAttempts bounds the automatic retry loop for write-conflict aborts.
	TxMaxAttempts int `envconfig:"BILLSTACK_DB_TX_MAX_ATTEMPTS" default:"3"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BILLSTACK_REDIS_URL"`
	Password     string        `envconfig:"BILLSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BILLSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BILLSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BILLSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BILLSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BILLSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BILLSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BILLSTACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BILLSTACK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BILLSTACK_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// SyncConfig drives the connectivity monitor and offline replay loop.
type SyncConfig struct {
	RecheckInterval time.Duration `envconfig:"BILLSTACK_SYNC_RECHECK_INTERVAL" default:"5s"`
	ProbeTimeout    time.Duration `envconfig:"BILLSTACK_SYNC_PROBE_TIMEOUT" default:"3s"`
	QueueDir        string        `envconfig:"BILLSTACK_SYNC_QUEUE_DIR" default:"./data"`
	QueueBackend    string        `envconfig:"BILLSTACK_SYNC_QUEUE_BACKEND" default:"file"`
}

// StockLogConfig tunes the best-effort stock transaction sink.
type StockLogConfig struct {
	BufferSize  int           `envconfig:"BILLSTACK_STOCKLOG_BUFFER_SIZE" default:"256"`
	MaxAttempts int           `envconfig:"BILLSTACK_STOCKLOG_MAX_ATTEMPTS" default:"3"`
	RetryDelay  time.Duration `envconfig:"BILLSTACK_STOCKLOG_RETRY_DELAY" default:"250ms"`
}

type PubSubConfig struct {
	ProjectID        string `envconfig:"BILLSTACK_GCP_PROJECT_ID"`
	StockEventsTopic string `envconfig:"BILLSTACK_PUBSUB_STOCK_EVENTS_TOPIC"`
}

// Enabled reports whether stock events should be published externally.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ProjectID) != "" && strings.TrimSpace(p.StockEventsTopic) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BILLSTACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BILLSTACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file:billstack.db?_busy_timeout=5000"
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"BILLSTACK_DB_HOST": db.Host,
		"BILLSTACK_DB_USER": db.User,
		"BILLSTACK_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either BILLSTACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
