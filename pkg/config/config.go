package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Password PasswordConfig
	CORS     CORSConfig
	Storage  StorageConfig
	PDF      PDFConfig
	Jobs     JobsConfig
}

// Load reads the process environment once. The returned value is passed to
// every component that needs it; nothing reads the environment afterwards.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Session.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTEDESK_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"QUOTEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN string `envconfig:"QUOTEDESK_DATABASE_URL"`

	Host     string `envconfig:"QUOTEDESK_DB_HOST"`
	Port     int    `envconfig:"QUOTEDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"QUOTEDESK_DB_USER"`
	Password string `envconfig:"QUOTEDESK_DB_PASSWORD"`
	Name     string `envconfig:"QUOTEDESK_DB_NAME"`
	SSLMode  string `envconfig:"QUOTEDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTEDESK_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"QUOTEDESK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	Debug           bool          `envconfig:"QUOTEDESK_DB_DEBUG" default:"false"`

	// AutoMigrate lets local environments create missing tables on boot.
	// Production schemas are managed outside this service.
	AutoMigrate bool `envconfig:"QUOTEDESK_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTEDESK_REDIS_URL"`
	Address      string        `envconfig:"QUOTEDESK_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTEDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTEDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEDESK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"QUOTEDESK_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis endpoint was configured. The session cache
// is skipped entirely when it was not.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type SessionConfig struct {
	Secret   string        `envconfig:"QUOTEDESK_AUTH_SECRET" required:"true"`
	TTL      time.Duration `envconfig:"QUOTEDESK_SESSION_TTL" default:"168h"`
	CacheTTL time.Duration `envconfig:"QUOTEDESK_SESSION_CACHE_TTL" default:"5m"`
}

func (s SessionConfig) validate() error {
	if len(s.Secret) < 16 {
		return fmt.Errorf("%s must be at least 16 characters", EnvAuthSecret)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvSessionTTL)
	}
	return nil
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"QUOTEDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"QUOTEDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"QUOTEDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"QUOTEDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"QUOTEDESK_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	Origins []string `envconfig:"QUOTEDESK_CORS_ORIGINS" default:"http://localhost:3000"`
}

// StorageConfig points at an S3-compatible bucket for rendered quote PDFs.
// Leaving the endpoint empty disables uploads; PDFs are still streamed.
type StorageConfig struct {
	Endpoint      string        `envconfig:"QUOTEDESK_STORAGE_ENDPOINT"`
	AccessKey     string        `envconfig:"QUOTEDESK_STORAGE_ACCESS_KEY"`
	SecretKey     string        `envconfig:"QUOTEDESK_STORAGE_SECRET_KEY"`
	Bucket        string        `envconfig:"QUOTEDESK_STORAGE_BUCKET" default:"quotes"`
	UseSSL        bool          `envconfig:"QUOTEDESK_STORAGE_USE_SSL" default:"true"`
	PublicBaseURL string        `envconfig:"QUOTEDESK_STORAGE_PUBLIC_BASE_URL"`
	URLExpiry     time.Duration `envconfig:"QUOTEDESK_STORAGE_URL_EXPIRY" default:"24h"`
}

func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Endpoint) != ""
}

type PDFConfig struct {
	CompanyName string `envconfig:"QUOTEDESK_PDF_COMPANY_NAME" default:"QuoteDesk"`
}

// JobsConfig drives the maintenance worker.
type JobsConfig struct {
	Interval time.Duration `envconfig:"QUOTEDESK_JOBS_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"QUOTEDESK_JOBS_LOCK_TTL" default:"10m"`
	// SessionGrace is how long an expired session row is kept before purge.
	SessionGrace time.Duration `envconfig:"QUOTEDESK_JOBS_SESSION_GRACE" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDatabaseURL, strings.Join(missing, ", "))
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
