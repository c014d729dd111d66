package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOCKAPI"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "STOCKAPI_DB_DSN"
	EnvDBHost = "STOCKAPI_DB_HOST"
	EnvDBUser = "STOCKAPI_DB_USER"
	EnvDBName = "STOCKAPI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Media         MediaConfig
	Seed          SeedConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string   `envconfig:"STOCKAPI_APP_ENV" default:"development"`
	Port         string   `envconfig:"STOCKAPI_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"STOCKAPI_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"STOCKAPI_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STOCKAPI_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKAPI_DB_DSN"`
	Driver string `envconfig:"STOCKAPI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKAPI_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKAPI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKAPI_DB_USER"`
	LegacyPassword string `envconfig:"STOCKAPI_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKAPI_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKAPI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKAPI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKAPI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKAPI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKAPI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKAPI_REDIS_URL"`
	Address      string        `envconfig:"STOCKAPI_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKAPI_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKAPI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKAPI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKAPI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKAPI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKAPI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKAPI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKAPI_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKAPI_JWT_ISSUER" default:"stock-api"`
	ExpirationMinutes int    `envconfig:"STOCKAPI_JWT_EXPIRATION_MINUTES" default:"600"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKAPI_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKAPI_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKAPI_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKAPI_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKAPI_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOCKAPI_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"STOCKAPI_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOCKAPI_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type MediaConfig struct {
	UploadDir    string `envconfig:"STOCKAPI_MEDIA_UPLOAD_DIR" default:"uploads"`
	MaxUploadMB  int    `envconfig:"STOCKAPI_MEDIA_MAX_UPLOAD_MB" default:"5"`
	SniffContent bool   `envconfig:"STOCKAPI_MEDIA_SNIFF_CONTENT" default:"true"`
}

type SeedConfig struct {
	Enabled       bool   `envconfig:"STOCKAPI_SEED_ENABLED" default:"true"`
	AdminUsername string `envconfig:"STOCKAPI_SEED_ADMIN_USERNAME" default:"admin"`
	AdminPassword string `envconfig:"STOCKAPI_SEED_ADMIN_PASSWORD" default:"password"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKAPI_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.IsSQLite() {
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
