package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Storage       StorageConfig
	SMTP          SMTPConfig
	Contact       ContactConfig
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
	Env          string `envconfig:"SERVIPRO_APP_ENV" required:"true"`
	Port         string `envconfig:"SERVIPRO_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"SERVIPRO_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string `envconfig:"SERVIPRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERVIPRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERVIPRO_DB_DSN"`
	Driver string `envconfig:"SERVIPRO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SERVIPRO_DB_HOST"`
	LegacyPort     int    `envconfig:"SERVIPRO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SERVIPRO_DB_USER"`
	LegacyPassword string `envconfig:"SERVIPRO_DB_PASSWORD"`
	LegacyName     string `envconfig:"SERVIPRO_DB_NAME"`
	LegacySSLMode  string `envconfig:"SERVIPRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SERVIPRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERVIPRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERVIPRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERVIPRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SERVIPRO_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SERVIPRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERVIPRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERVIPRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERVIPRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERVIPRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SERVIPRO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SERVIPRO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SERVIPRO_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"SERVIPRO_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
	RememberTTLMinutes     int    `envconfig:"SERVIPRO_REMEMBER_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// RememberTTL returns the extended refresh TTL used when a login asks to be
// remembered.
func (j JWTConfig) RememberTTL() time.Duration {
	if j.RememberTTLMinutes <= 0 {
		return j.RefreshTokenTTL()
	}
	return time.Duration(j.RememberTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SERVIPRO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SERVIPRO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SERVIPRO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SERVIPRO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SERVIPRO_ARGON_KEY_LEN" default:"32"`

	MinLength     int  `envconfig:"SERVIPRO_PASSWORD_MIN_LENGTH" default:"8"`
	RequireUpper  bool `envconfig:"SERVIPRO_PASSWORD_REQUIRE_UPPER" default:"false"`
	RequireLower  bool `envconfig:"SERVIPRO_PASSWORD_REQUIRE_LOWER" default:"false"`
	RequireDigit  bool `envconfig:"SERVIPRO_PASSWORD_REQUIRE_DIGIT" default:"false"`
	RequireSymbol bool `envconfig:"SERVIPRO_PASSWORD_REQUIRE_SYMBOL" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SERVIPRO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type StorageConfig struct {
	Root        string `envconfig:"SERVIPRO_STORAGE_ROOT" default:"./uploads"`
	PublicPath  string `envconfig:"SERVIPRO_STORAGE_PUBLIC_PATH" default:"/uploads"`
	MaxUploadMB int    `envconfig:"SERVIPRO_STORAGE_MAX_UPLOAD_MB" default:"2"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 2 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type SMTPConfig struct {
	Host     string `envconfig:"SERVIPRO_SMTP_HOST"`
	Port     int    `envconfig:"SERVIPRO_SMTP_PORT" default:"587"`
	Username string `envconfig:"SERVIPRO_SMTP_USERNAME"`
	Password string `envconfig:"SERVIPRO_SMTP_PASSWORD"`
}

// Addr returns the host:port pair expected by the SMTP dialer.
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type ContactConfig struct {
	OperatorEmail string `envconfig:"SERVIPRO_CONTACT_OPERATOR_EMAIL" default:"contacto@servipro.com"`
	FromEmail     string `envconfig:"SERVIPRO_CONTACT_FROM_EMAIL" default:"no-reply@servipro.com"`
	FromName      string `envconfig:"SERVIPRO_CONTACT_FROM_NAME" default:"ServiPro"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SERVIPRO_AUTO_MIGRATE" default:"false"`
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
