package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultPort        = "8080"
	DefaultMetricsPort = "9100"

	DefaultTokenIssuer   = "quizmentor-auth"
	DefaultTokenAudience = "quizmentor"

	DefaultAccessTokenExpiryMin  = 15
	DefaultRefreshTokenExpiryMin = 10080

	DefaultMaxSessionsPerUser = 5

	DefaultLoginMaxAttempts = 5
	DefaultLockoutMinutes   = 15

	DefaultLoginRateMax       = 10
	DefaultLoginRateWindowMin = 15
	DefaultLoginRateBlockMin  = 30

	DefaultAPIRateMax       = 300
	DefaultAPIRateWindowMin = 1
	DefaultAPIRateBlockMin  = 1

	DefaultCSRFTTLMin       = 60
	DefaultSweepIntervalMin = 5

	// Signing keys below this size are refused outright.
	MinTokenSecretLen = 32
)

type Config struct {
	Env         string
	LogLevel    string
	Port        string
	MetricsPort string

	DBURL string

	// Empty RedisAddr selects the in-process rate limiter.
	RedisAddr     string
	RedisPassword string

	TokenSecret   string
	TokenIssuer   string
	TokenAudience string

	AccessExpiryMin  int
	RefreshExpiryMin int

	MaxSessionsPerUser int

	LoginMaxAttempts int
	LockoutMinutes   int

	LoginRateMax       int
	LoginRateWindowMin int
	LoginRateBlockMin  int

	APIRateMax       int
	APIRateWindowMin int
	APIRateBlockMin  int

	CSRFTTLMin       int
	SweepIntervalMin int

	// Zero means the bcrypt default cost.
	BcryptCost int

	CookieSecure bool
	CookieDomain string
}

// Load reads configuration from the environment, falling back to an optional
// .env.dev or .env.prod file (looked up in . and ./config, selected by ENV).
// Environment variables always win over file values.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	env := strings.ToLower(v.GetString("ENV"))

	name := ".env.dev"
	if env == EnvProduction {
		name = ".env.prod"
	}
	v.SetConfigName(name)
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Env:         env,
		LogLevel:    v.GetString("LOG_LEVEL"),
		Port:        v.GetString("PORT"),
		MetricsPort: v.GetString("METRICS_PORT"),

		DBURL: v.GetString("DB_URL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		TokenSecret:   v.GetString("TOKEN_SECRET"),
		TokenIssuer:   v.GetString("TOKEN_ISSUER"),
		TokenAudience: v.GetString("TOKEN_AUDIENCE"),

		AccessExpiryMin:  v.GetInt("ACCESS_TOKEN_EXPIRY"),
		RefreshExpiryMin: v.GetInt("REFRESH_TOKEN_EXPIRY"),

		MaxSessionsPerUser: v.GetInt("MAX_SESSIONS_PER_USER"),

		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LockoutMinutes:   v.GetInt("LOCKOUT_MINUTES"),

		LoginRateMax:       v.GetInt("LOGIN_RATE_MAX"),
		LoginRateWindowMin: v.GetInt("LOGIN_RATE_WINDOW_MIN"),
		LoginRateBlockMin:  v.GetInt("LOGIN_RATE_BLOCK_MIN"),

		APIRateMax:       v.GetInt("API_RATE_MAX"),
		APIRateWindowMin: v.GetInt("API_RATE_WINDOW_MIN"),
		APIRateBlockMin:  v.GetInt("API_RATE_BLOCK_MIN"),

		CSRFTTLMin:       v.GetInt("CSRF_TTL_MIN"),
		SweepIntervalMin: v.GetInt("SWEEP_INTERVAL_MIN"),

		BcryptCost: v.GetInt("BCRYPT_COST"),

		CookieSecure: v.GetBool("COOKIE_SECURE"),
		CookieDomain: v.GetString("COOKIE_DOMAIN"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("METRICS_PORT", DefaultMetricsPort)
	v.SetDefault("TOKEN_ISSUER", DefaultTokenIssuer)
	v.SetDefault("TOKEN_AUDIENCE", DefaultTokenAudience)
	v.SetDefault("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiryMin)
	v.SetDefault("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiryMin)
	v.SetDefault("MAX_SESSIONS_PER_USER", DefaultMaxSessionsPerUser)
	v.SetDefault("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts)
	v.SetDefault("LOCKOUT_MINUTES", DefaultLockoutMinutes)
	v.SetDefault("LOGIN_RATE_MAX", DefaultLoginRateMax)
	v.SetDefault("LOGIN_RATE_WINDOW_MIN", DefaultLoginRateWindowMin)
	v.SetDefault("LOGIN_RATE_BLOCK_MIN", DefaultLoginRateBlockMin)
	v.SetDefault("API_RATE_MAX", DefaultAPIRateMax)
	v.SetDefault("API_RATE_WINDOW_MIN", DefaultAPIRateWindowMin)
	v.SetDefault("API_RATE_BLOCK_MIN", DefaultAPIRateBlockMin)
	v.SetDefault("CSRF_TTL_MIN", DefaultCSRFTTLMin)
	v.SetDefault("SWEEP_INTERVAL_MIN", DefaultSweepIntervalMin)
	v.SetDefault("COOKIE_SECURE", true)
}

func (c *Config) validate() error {
	var missing []string
	if c.DBURL == "" {
		missing = append(missing, "DB_URL")
	}
	if c.TokenSecret == "" {
		missing = append(missing, "TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if len(c.TokenSecret) < MinTokenSecretLen {
		return fmt.Errorf("TOKEN_SECRET must be at least %d characters", MinTokenSecretLen)
	}
	if c.AccessExpiryMin <= 0 || c.RefreshExpiryMin <= 0 {
		return errors.New("token expiries must be positive")
	}
	if c.RefreshExpiryMin < c.AccessExpiryMin {
		return errors.New("REFRESH_TOKEN_EXPIRY must not be shorter than ACCESS_TOKEN_EXPIRY")
	}
	// CSRF tokens are session-scoped; a TTL past the session lifetime is dead
	// weight.
	if c.CSRFTTLMin > c.RefreshExpiryMin {
		return errors.New("CSRF_TTL_MIN must not exceed REFRESH_TOKEN_EXPIRY")
	}

	return nil
}

func (c *Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.AccessExpiryMin) * time.Minute
}

func (c *Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.RefreshExpiryMin) * time.Minute
}

func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

func (c *Config) CSRFTTL() time.Duration {
	return time.Duration(c.CSRFTTLMin) * time.Minute
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMin) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}
