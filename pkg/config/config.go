package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	OTP          OTPConfig
	Lahza        LahzaConfig
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
	Env          string `envconfig:"MATJARA_APP_ENV" required:"true"`
	Port         string `envconfig:"MATJARA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MATJARA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MATJARA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MATJARA_DB_DSN"`
	Driver string `envconfig:"MATJARA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MATJARA_DB_HOST"`
	Port     int    `envconfig:"MATJARA_DB_PORT" default:"5432"`
	User     string `envconfig:"MATJARA_DB_USER"`
	Password string `envconfig:"MATJARA_DB_PASSWORD"`
	Name     string `envconfig:"MATJARA_DB_NAME"`
	SSLMode  string `envconfig:"MATJARA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MATJARA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MATJARA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MATJARA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MATJARA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MATJARA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MATJARA_REDIS_ADDR"`
	Password     string        `envconfig:"MATJARA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MATJARA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MATJARA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MATJARA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MATJARA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MATJARA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MATJARA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MATJARA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MATJARA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MATJARA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MATJARA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MATJARA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MATJARA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MATJARA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MATJARA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MATJARA_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	TTL         time.Duration `envconfig:"MATJARA_OTP_TTL" default:"10m"`
	MaxAttempts int           `envconfig:"MATJARA_OTP_MAX_ATTEMPTS" default:"5"`
	CodeLength  int           `envconfig:"MATJARA_OTP_CODE_LENGTH" default:"6"`
}

type LahzaConfig struct {
	SecretKey     string `envconfig:"MATJARA_LAHZA_SECRET_KEY"`
	WebhookSecret string `envconfig:"MATJARA_LAHZA_WEBHOOK_SECRET"`
	BaseURL       string `envconfig:"MATJARA_LAHZA_BASE_URL" default:"https://api.lahza.io"`
	CallbackURL   string `envconfig:"MATJARA_LAHZA_CALLBACK_URL"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MATJARA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MATJARA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		"MATJARA_DB_HOST": db.Host,
		"MATJARA_DB_USER": db.User,
		"MATJARA_DB_NAME": db.Name,
	}
	for _, key := range []string{"MATJARA_DB_HOST", "MATJARA_DB_USER", "MATJARA_DB_NAME"} {
		if discrete[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either MATJARA_DB_DSN or %s are required", strings.Join(missing, ", "))
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
