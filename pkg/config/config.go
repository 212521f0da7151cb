package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Config carries every tunable for both processes. Values are read once
// at startup and never mutated afterwards.
type Config struct {
	App       AppConfig
	DB        DBConfig
	Catalog   CatalogConfig
	Scheduler SchedulerConfig
	Edge      EdgeConfig
	Redis     RedisConfig
	Password  PasswordConfig
	SMTP      SMTPConfig
	JWT       JWTConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("timele", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIMELE_APP_ENV" default:"dev"`
	Port         string `envconfig:"TIMELE_APP_PORT" default:"8001"`
	LogLevel     string `envconfig:"TIMELE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIMELE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN            string `envconfig:"DATABASE_URL"`
	ResetOnStartup bool   `envconfig:"RESET_DATABASE_ON_STARTUP" default:"false"`

	LegacyHost     string `envconfig:"TIMELE_DB_HOST"`
	LegacyPort     int    `envconfig:"TIMELE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIMELE_DB_USER"`
	LegacyPassword string `envconfig:"TIMELE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIMELE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIMELE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIMELE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIMELE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIMELE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIMELE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// CatalogConfig points the bootstrap loader at the mounted CSV files.
type CatalogConfig struct {
	CSVDir string `envconfig:"TIMELE_CSV_DIR" default:"/data/csv"`
}

type SchedulerConfig struct {
	Enabled    bool          `envconfig:"TIMELE_SCHEDULER_ENABLED" default:"true"`
	TickPeriod time.Duration `envconfig:"TIMELE_SCHEDULER_TICK_PERIOD" default:"45s"`
	BatchSize  int           `envconfig:"TIMELE_SCHEDULER_BATCH_SIZE" default:"200"`
	// AdvisoryLockKey serializes ticks across gateway replicas.
	AdvisoryLockKey int64 `envconfig:"TIMELE_SCHEDULER_LOCK_KEY" default:"7431001"`
}

type EdgeConfig struct {
	GatewayURL         string        `envconfig:"DB_SERVICE_URL" default:"http://localhost:8001"`
	GatewayTimeout     time.Duration `envconfig:"TIMELE_DB_SERVICE_TIMEOUT" default:"30s"`
	RecommenderURL     string        `envconfig:"ML_SERVICE_URL" default:"http://localhost:8002"`
	RecommenderTimeout time.Duration `envconfig:"TIMELE_ML_SERVICE_TIMEOUT" default:"10s"`
	PredictionCacheTTL time.Duration `envconfig:"TIMELE_PREDICTION_CACHE_TTL" default:"5m"`
	StartupProbePeriod time.Duration `envconfig:"TIMELE_STARTUP_PROBE_PERIOD" default:"2s"`
	StartupProbeWindow time.Duration `envconfig:"TIMELE_STARTUP_PROBE_WINDOW" default:"2m"`
	AllowedOrigins     []string      `envconfig:"TIMELE_CORS_ALLOWED_ORIGINS" default:"*"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIMELE_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"TIMELE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIMELE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIMELE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TIMELE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TIMELE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TIMELE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TIMELE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TIMELE_ARGON_KEY_LEN" default:"32"`
}

// SMTPConfig configures reminder email delivery. An empty host keeps
// the log-only sender.
type SMTPConfig struct {
	Host     string `envconfig:"TIMELE_SMTP_HOST"`
	Port     int    `envconfig:"TIMELE_SMTP_PORT" default:"587"`
	Username string `envconfig:"TIMELE_SMTP_USERNAME"`
	Password string `envconfig:"TIMELE_SMTP_PASSWORD"`
	From     string `envconfig:"TIMELE_SMTP_FROM" default:"reminders@timele.app"`
}

// JWTConfig is reserved for future token auth; nothing reads the secret
// today because login is stateless.
type JWTConfig struct {
	Secret string `envconfig:"TIMELE_JWT_SECRET"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"TIMELE_DB_HOST": db.LegacyHost,
		"TIMELE_DB_USER": db.LegacyUser,
		"TIMELE_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"TIMELE_DB_HOST", "TIMELE_DB_USER", "TIMELE_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either DATABASE_URL or %s are required", strings.Join(missing, ", "))
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
