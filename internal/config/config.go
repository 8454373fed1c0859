package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// RazorpayKeyID is safe to expose to clients; the key secret is not.
	// The secret authenticates order creation and verifies payment signatures.
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string

	CORSAllowOrigin string

	RateLimit RateLimitConfig
	Email     EmailConfig

	// CheckoutTestBypass lets the checkout flow skip the payment provider
	// entirely. Only honored when Environment is a development environment.
	CheckoutTestBypass bool
}

// RateLimitConfig throttles the payment endpoints. Disabled unless a redis
// address is configured.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PaymentOrderRate   float64
	PaymentOrderBurst  int
	PaymentVerifyRate  float64
	PaymentVerifyBurst int
}

// EmailConfig configures receipt mail delivery. An empty host disables it.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:            getenv("APP_SERVICE", "storefront"),
		AppVersion:         getenv("APP_VERSION", "0.1.0"),
		Environment:        getenv("ENVIRONMENT", "development"),
		HTTPAddr:           getenv("HTTP_ADDR", ":8080"),
		DBType:             getenv("DATABASE_TYPE", "postgres"),
		DBHost:             getenv("DATABASE_HOST", "localhost"),
		DBPort:             getenv("DATABASE_PORT", "5432"),
		DBName:             getenv("DATABASE_NAME", "storefront"),
		DBUser:             getenv("DATABASE_USER", "postgres"),
		DBPassword:         getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:          getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:      getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:      getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime:  getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime:  getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
		RazorpayKeyID:      strings.TrimSpace(getenv("RAZORPAY_KEY_ID", "")),
		RazorpayKeySecret:  strings.TrimSpace(getenv("RAZORPAY_KEY_SECRET", "")),
		RazorpayBaseURL:    getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		CORSAllowOrigin:    getenv("CORS_ALLOW_ORIGIN", "*"),
		CheckoutTestBypass: getenvBool("CHECKOUT_TEST_BYPASS", false),
		RateLimit: RateLimitConfig{
			Enabled:            getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:          getenv("REDIS_ADDR", ""),
			RedisPassword:      getenv("REDIS_PASSWORD", ""),
			RedisDB:            getenvInt("REDIS_DB", 0),
			PaymentOrderRate:   getenvFloat("RATE_LIMIT_PAYMENT_ORDER_RATE", 1),
			PaymentOrderBurst:  getenvInt("RATE_LIMIT_PAYMENT_ORDER_BURST", 10),
			PaymentVerifyRate:  getenvFloat("RATE_LIMIT_PAYMENT_VERIFY_RATE", 0.5),
			PaymentVerifyBurst: getenvInt("RATE_LIMIT_PAYMENT_VERIFY_BURST", 5),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("EMAIL_SMTP_HOST", ""),
			SMTPPort:     getenvInt("EMAIL_SMTP_PORT", 587),
			SMTPUsername: getenv("EMAIL_SMTP_USERNAME", ""),
			SMTPPassword: getenv("EMAIL_SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("EMAIL_SMTP_FROM", "receipts@storefront.local"),
		},
	}
}

// IsDevelopment reports whether the app runs in a development environment.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
