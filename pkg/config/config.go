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
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"CARBON_APP_ENV" required:"true"`
	Port            string        `envconfig:"CARBON_APP_PORT" default:"8888"`
	LogLevel        string        `envconfig:"CARBON_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"CARBON_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"CARBON_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"CARBON_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CARBON_DB_DSN"`
	LogSQL bool   `envconfig:"CARBON_DB_LOG_SQL" default:"false"`

	LegacyHost     string `envconfig:"CARBON_DB_HOST"`
	LegacyPort     int    `envconfig:"CARBON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CARBON_DB_USER"`
	LegacyPassword string `envconfig:"CARBON_DB_PASSWORD"`
	LegacyName     string `envconfig:"CARBON_DB_NAME"`
	LegacySSLMode  string `envconfig:"CARBON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CARBON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARBON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARBON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARBON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional; idempotency replay is disabled when neither URL nor
// Address is set.
type RedisConfig struct {
	URL          string        `envconfig:"CARBON_REDIS_URL"`
	Address      string        `envconfig:"CARBON_REDIS_ADDR"`
	Password     string        `envconfig:"CARBON_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARBON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARBON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARBON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARBON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARBON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARBON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CARBON_CORS_ALLOWED_ORIGINS" default:"*"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"CARBON_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"CARBON_SQLITE_PATH" default:"carbon.db"`
	AutoMigrate bool   `envconfig:"CARBON_AUTO_MIGRATE" default:"false"`
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
