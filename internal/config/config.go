package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr          string
	RedisPassword      string
	RedisTLS           bool
	PracticeCacheTTL   time.Duration
	SubmissionGuardTTL time.Duration

	AdminJWTSecret  string
	AdminSessionTTL time.Duration

	// Email transport: "sendgrid", "ses", "smtp" or "stub"
	EmailProvider      string
	SendGridAPIKey     string
	SMTPHost           string
	SMTPPort           string
	MailFromEmail      string
	MailFromName       string
	MailDefaultTo      string
	NotifyOnRequest    bool
	NotifyOnSchedule   bool
	SupportPhone       string
	DefaultPhoneRegion string
	DefaultTimezone    string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	LogoBucket          string
	LogoURLTTL          time.Duration

	CORSAllowedOrigins []string
	BookingRateLimit   float64
	BookingRateBurst   int

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisTLS:           getEnvAsBool("REDIS_TLS", false),
		PracticeCacheTTL:   getEnvAsDuration("PRACTICE_CACHE_TTL", 5*time.Minute),
		SubmissionGuardTTL: getEnvAsDuration("SUBMISSION_GUARD_TTL", 30*time.Second),

		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
		AdminSessionTTL: getEnvAsDuration("ADMIN_SESSION_TTL", 12*time.Hour),

		EmailProvider:      strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "1025"),
		MailFromEmail:      getEnv("MAIL_FROM_EMAIL", "no-reply@connectient.co"),
		MailFromName:       getEnv("MAIL_FROM_NAME", "Connectient"),
		MailDefaultTo:      getEnv("MAIL_DEFAULT_TO", ""),
		NotifyOnRequest:    getEnvAsBool("NOTIFY_ON_REQUEST", true),
		NotifyOnSchedule:   getEnvAsBool("NOTIFY_ON_SCHEDULE", true),
		SupportPhone:       getEnv("SUPPORT_PHONE", ""),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "TT")),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "America/Port_of_Spain"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		LogoBucket:          getEnv("LOGO_BUCKET", ""),
		LogoURLTTL:          getEnvAsDuration("LOGO_URL_TTL", time.Hour),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		BookingRateLimit:   getEnvAsFloat("BOOKING_RATE_LIMIT", 1),
		BookingRateBurst:   getEnvAsInt("BOOKING_RATE_BURST", 10),

		OTelEnabled:     getEnvAsBool("OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelSampleRatio: getEnvAsRatio("OTEL_SAMPLING_RATIO", 1),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsRatio(key string, defaultValue float64) float64 {
	value := getEnvAsFloat(key, defaultValue)
	if value < 0 || value > 1 {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
