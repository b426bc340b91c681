package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting of the API server.
type Config struct {
	Port        string
	// empty means any origin
	CORSOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string

	JWTSecret string
	JWTTTL    time.Duration

	LogFile  string
	LogLevel string

	AssistantDelay time.Duration
	GatewayDelay   time.Duration
	NotifyDelay    time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
}

// Load reads .env (if present) and the environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found – relying on env vars")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getList("CORS_ALLOWED_ORIGINS"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "gowheels"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),
		JWTTTL:    getDuration("JWT_TTL", 72*time.Hour),

		LogFile:  getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AssistantDelay: getDuration("ASSISTANT_DELAY", 1500*time.Millisecond),
		GatewayDelay:   getDuration("GATEWAY_DELAY", time.Second),
		NotifyDelay:    getDuration("NOTIFY_DELAY", time.Second),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", "rzp_test_1234567890"),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", "rzp_test_secret"),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithError(err).Warnf("invalid duration for %s, using %s", key, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithError(err).Warnf("invalid integer for %s, using %d", key, defaultValue)
		return defaultValue
	}
	return n
}
