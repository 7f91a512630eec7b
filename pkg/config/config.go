package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Auth     AuthConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port         string
	Environment  string // development or production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type NATSConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret         string
	TokenExpiresDays  int // session token lifetime
	CookieExpiresDays int
	AdminSignupKey    string // plain key or argon2id hash, see pkg/auth
	FrontendURL       string
	ResetTokenTTL     time.Duration // reset + verification token window
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	SMTPUseTLS    bool
	MailerSendKey string
	FromName      string
	FromEmail     string
	DevMode       bool // print emails to logs instead of sending
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 10),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			TokenExpiresDays:  getInt("JWT_EXPIRES_IN", 90),
			CookieExpiresDays: getInt("JWT_COOKIE_EXPIRES_IN", 90),
			AdminSignupKey:    getEnv("ADMIN_API_KEY", ""),
			FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
			ResetTokenTTL:     getDuration("RESET_TOKEN_TTL", 10*time.Minute),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPFrom:      getEnv("SMTP_FROM", "noreply@portal.local"),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", false),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("MAIL_FROM_NAME", "Portal"),
			FromEmail:     getEnv("MAIL_FROM_EMAIL", "noreply@portal.local"),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.AdminSignupKey == "" {
		return nil, fmt.Errorf("ADMIN_API_KEY is required")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
