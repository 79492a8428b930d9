package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AGRICHAIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "AGRICHAIN_DB_DSN"
	EnvDBHost = "AGRICHAIN_DB_HOST"
	EnvDBUser = "AGRICHAIN_DB_USER"
	EnvDBName = "AGRICHAIN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Org           OrgConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validateDispatchFlag(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRICHAIN_APP_ENV" required:"true"`
	Port         string `envconfig:"AGRICHAIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGRICHAIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRICHAIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRICHAIN_DB_DSN"`
	Driver string `envconfig:"AGRICHAIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRICHAIN_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRICHAIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRICHAIN_DB_USER"`
	LegacyPassword string `envconfig:"AGRICHAIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRICHAIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRICHAIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRICHAIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRICHAIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRICHAIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRICHAIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	ConnectRetries  int           `envconfig:"AGRICHAIN_DB_CONNECT_RETRIES" default:"3"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRICHAIN_REDIS_URL" required:"true"`
	Password     string        `envconfig:"AGRICHAIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRICHAIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRICHAIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRICHAIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRICHAIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRICHAIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRICHAIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AGRICHAIN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AGRICHAIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AGRICHAIN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AGRICHAIN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGRICHAIN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGRICHAIN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGRICHAIN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGRICHAIN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGRICHAIN_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"AGRICHAIN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"AGRICHAIN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"AGRICHAIN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite            bool `envconfig:"AGRICHAIN_USE_SQLITE" default:"false"`
	AutoMigrate          bool `envconfig:"AGRICHAIN_AUTO_MIGRATE" default:"false"`
	DispatchAdjustsStock bool `envconfig:"AGRICHAIN_FEATURE_DISPATCH_ADJUSTS_STOCK" default:"false"`
}

// OrgConfig carries the well-known identity of the central aggregator.
type OrgConfig struct {
	AggregatorID uuid.UUID `envconfig:"AGRICHAIN_AGGREGATOR_ORG_ID"`
}

func (c *Config) validateDispatchFlag() error {
	if c.FeatureFlags.DispatchAdjustsStock && c.Org.AggregatorID == uuid.Nil {
		return fmt.Errorf("AGRICHAIN_AGGREGATOR_ORG_ID is required when dispatch stock adjustment is enabled")
	}
	return nil
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
