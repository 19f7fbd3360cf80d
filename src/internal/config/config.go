package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/jackyeh168/saveforperks/src/pkg/logger"
)

// 支援的資料庫驅動
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config 應用程式設定
//
// 只能透過此結構讀取設定；其他套件不直接讀環境變數。
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=saveforperks"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	HttpWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT,default=15s"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=10s"`

	DBDriver   string `env:"DB_DRIVER,default=postgres"`
	DBMigrate  bool   `env:"DB_MIGRATE,default=true"`
	DBDebug    bool   `env:"DB_DEBUG,default=false"`
	SQLitePath string `env:"SQLITE_PATH,default=saveforperks.db"`

	PostgresHost     string `env:"POSTGRES_HOST,default=localhost"`
	PostgresPort     string `env:"POSTGRES_PORT,default=5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDatabase string `env:"POSTGRES_DBNAME"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE,default=disable"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_KEY_PREFIX,default=perks:"`

	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`
	IdempotencyLockTTL time.Duration `env:"IDEMPOTENCY_LOCK_TTL,default=30s"`
	EventStream        string        `env:"EVENT_STREAM,default=loyalty-events"`
	EventStreamMaxLen  int64         `env:"EVENT_STREAM_MAX_LEN,default=100000"`

	AuthJWTSecret    string `env:"AUTH_JWT_SECRET"`
	AuthJWTPublicKey string `env:"AUTH_JWT_PUBLIC_KEY"`
	AuthIssuer       string `env:"AUTH_ISSUER"`
	AuthAudience     string `env:"AUTH_AUDIENCE"`

	MetricsEnabled bool   `env:"METRICS_ENABLED,default=true"`
	MetricsPath    string `env:"METRICS_PATH,default=/metrics"`
	PromNamespace  string `env:"PROM_NAMESPACE,default=saveforperks"`

	TxMaxRetries int `env:"TX_MAX_RETRIES,default=3"`
}

var config *Config

// Load 讀取設定：先載入 .env 檔（path 非空時），再映射環境變數
func Load(path string) (*Config, error) {
	logger.Info("loading configs..", "path", path)

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return nil, errors.Wrap(err, "failed to map env variables to Config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	config = c
	return c, nil
}

// Get 已載入的設定；未載入時 panic
func Get() *Config {
	if config == nil {
		panic("config is not initialized")
	}
	return config
}

// Validate 檢查設定組合
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.PostgresUser == "" || c.PostgresDatabase == "" {
			return errors.New("POSTGRES_USER and POSTGRES_DBNAME are required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	if c.AuthJWTSecret == "" && c.AuthJWTPublicKey == "" {
		return errors.New("one of AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY is required")
	}
	if c.TxMaxRetries < 1 {
		return errors.Errorf("TX_MAX_RETRIES must be at least 1, got %d", c.TxMaxRetries)
	}
	return nil
}

// PostgresDSN 組合 postgres 連線字串
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDatabase, c.PostgresPort, c.PostgresSSLMode,
	)
}

// RedisEnabled 是否設定了 Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// IsProduction 是否為正式環境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
