package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"showbiz/internal/errors"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	AppEnv      string
	LogLevel    string
	SwaggerHost string
	ResetDB     bool

	DBDriver    string
	DatabaseDSN string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration

	MailEnabled   bool
	MailHost      string
	MailPort      int
	MailUser      string
	MailPass      string
	MailFromName  string
	MailWorkers   int
	MailQueueSize int

	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	S3PublicURL    string

	// AdminAPIKey guards the hirer admin routes when set. Empty keeps them public.
	AdminAPIKey string
	// AuthRateLimit is the per-IP requests/second allowed on unauthenticated auth routes. Zero disables it.
	AuthRateLimit float64
	// PhoneRegion is the ISO region assumed for phone numbers given without a country code.
	PhoneRegion string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		ResetDB:     getEnvBool("RESET_DB", false),

		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN: getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/showbiz?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 15*24*time.Hour),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),

		MailEnabled:   getEnvBool("MAIL_ENABLED", true),
		MailHost:      getEnv("MAIL_HOST", "smtp.gmail.com"),
		MailPort:      getEnvInt("MAIL_PORT", 587),
		MailUser:      os.Getenv("MAIL_USER"),
		MailPass:      os.Getenv("MAIL_PASS"),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Showbiz App"),
		MailWorkers:   getEnvInt("MAIL_WORKERS", 2),
		MailQueueSize: getEnvInt("MAIL_QUEUE_SIZE", 100),

		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		S3BaseEndpoint: os.Getenv("S3_BASE_ENDPOINT"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),

		AdminAPIKey:   os.Getenv("ADMIN_API_KEY"),
		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),
		PhoneRegion:   getEnv("PHONE_REGION", "IN"),
	}
}

// Validate reports missing secrets before any component is constructed.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.Config("JWT_SECRET is not defined")
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return errors.Config("TOKEN_TTL and RESET_TOKEN_TTL must be positive")
	}
	if c.MailEnabled && (c.MailUser == "" || c.MailPass == "") {
		return errors.Config("MAIL_USER and MAIL_PASS are required when MAIL_ENABLED is true")
	}
	if c.S3Bucket != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return errors.Config("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_BUCKET is set")
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return errors.Config("DB_DRIVER must be mysql or postgres")
	}
	return nil
}

// MediaEnabled reports whether profile image uploads are configured.
func (c *Config) MediaEnabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}
