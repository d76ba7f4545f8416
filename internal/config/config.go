package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Session    SessionConfig    `mapstructure:"session"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Invitation InvitationConfig `mapstructure:"invitation"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	GinMode    string           `mapstructure:"gin_mode"`
	OpenAIKey  string           `mapstructure:"openai_api_key"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	LogLevel string `mapstructure:"log_level"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type InvitationConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	RateLimit float64       `mapstructure:"rate_limit"`
	RateBurst int           `mapstructure:"rate_burst"`
}

// PolicyConfig toggles the member write extension point of access control.
type PolicyConfig struct {
	MemberModifyCanWrite bool `mapstructure:"member_modify_can_write"`
}

// envBindings keeps the flat variable names operators already use.
var envBindings = map[string]string{
	"server.port":                    "SERVER_PORT",
	"database.driver":                "DB_DRIVER",
	"database.host":                  "DB_HOST",
	"database.port":                  "DB_PORT",
	"database.user":                  "DB_USER",
	"database.password":              "DB_PASSWORD",
	"database.name":                  "DB_NAME",
	"database.ssl_mode":              "DB_SSLMODE",
	"database.log_level":             "DB_LOG_LEVEL",
	"redis.host":                     "REDIS_HOST",
	"redis.port":                     "REDIS_PORT",
	"session.secret":                 "SESSION_SECRET",
	"jwt.secret":                     "JWT_SECRET",
	"jwt.issuer":                     "JWT_ISSUER",
	"jwt.ttl":                        "JWT_TTL",
	"logger.level":                   "LOG_LEVEL",
	"logger.format":                  "LOG_FORMAT",
	"invitation.ttl":                 "INVITATION_TTL",
	"invitation.rate_limit":          "INVITE_RATE_LIMIT",
	"invitation.rate_burst":          "INVITE_RATE_BURST",
	"policy.member_modify_can_write": "MEMBER_MODIFY_CAN_WRITE",
	"gin_mode":                       "GIN_MODE",
	"openai_api_key":                 "OPENAI_API_KEY",
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "stepflow")
	v.SetDefault("database.password", "stepflow")
	v.SetDefault("database.name", "stepflow")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")

	v.SetDefault("session.secret", "default-secret-key-change-me")
	v.SetDefault("session.max_age", 86400*7)

	v.SetDefault("jwt.secret", "default-jwt-secret-change-me")
	v.SetDefault("jwt.issuer", "stepflow")
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("invitation.ttl", "168h")
	v.SetDefault("invitation.rate_limit", 2.0)
	v.SetDefault("invitation.rate_burst", 10)

	v.SetDefault("policy.member_modify_can_write", false)

	v.SetDefault("gin_mode", "debug")
	v.SetDefault("openai_api_key", "")
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Invitation.TTL <= 0 {
		return fmt.Errorf("invitation ttl must be positive")
	}
	if c.Invitation.RateLimit <= 0 || c.Invitation.RateBurst <= 0 {
		return fmt.Errorf("invitation rate limit and burst must be positive")
	}

	if c.IsRelease() {
		if c.Session.Secret == "" || strings.HasPrefix(c.Session.Secret, "default-") {
			return fmt.Errorf("SESSION_SECRET must be set in release mode")
		}
		if c.JWT.Secret == "" || strings.HasPrefix(c.JWT.Secret, "default-") {
			return fmt.Errorf("JWT_SECRET must be set in release mode")
		}
	}

	return nil
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// RedisAddr returns host:port, or "" when sessions should fall back to cookies.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}
