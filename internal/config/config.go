package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	LogJSON     bool

	MigrateOnStart bool

	Redis    RedisConfig
	PayPal   PayPalConfig
	Email    EmailConfig
	S3       S3Config
	CORS     []string
	DrawZone *time.Location

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	UploadRateLimit  int
	UploadRateWindow time.Duration

	TipTicketCap int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Environment  string // sandbox | live
	WebhookID    string
}

type EmailConfig struct {
	APIURL string
	APIKey string
	From   string
}

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// Load reads configuration from the process environment (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	paypalEnv := strings.ToLower(os.Getenv("PAYPAL_ENVIRONMENT"))
	if paypalEnv != "live" {
		paypalEnv = "sandbox"
	}

	drawZone := time.Local
	if tz := os.Getenv("DRAW_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.Fatal("invalid DRAW_TIMEZONE", "value", tz, "error", err)
		}
		drawZone = loc
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_JSON") == "true",

		MigrateOnStart: os.Getenv("MIGRATE_ON_START") == "true",

		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			Environment:  paypalEnv,
			WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		},
		Email: EmailConfig{
			APIURL: os.Getenv("EMAIL_API_URL"),
			APIKey: os.Getenv("EMAIL_API_KEY"),
			From:   getEnv("EMAIL_FROM", "no-reply@localhost"),
		},
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "media"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
		},
		CORS:     origins,
		DrawZone: drawZone,

		APIRateLimit:   getInt("API_RATE_LIMIT", 60),
		APIRateWindow:  time.Duration(getInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:  getInt("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: time.Duration(getInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		UploadRateLimit:  getInt("UPLOAD_RATE_LIMIT", 20),
		UploadRateWindow: time.Duration(getInt("UPLOAD_RATE_WINDOW_SECONDS", 3600)) * time.Second,

		TipTicketCap: getInt("TIP_TICKET_CAP", domain.DefaultTicketCap),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getInt returns a non-negative integer from env or def.
func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
