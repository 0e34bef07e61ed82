package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// Auth
	JWTSecret string

	// Interaction timing
	BatchWindow     time.Duration
	DoubleTapWindow time.Duration
	OverlayDuration time.Duration
	SessionIdleTTL  time.Duration
	FeedSize        int

	GestureProfilesFile string
	DefaultCurrency     string
}

// Load reads .env (if present) into the environment and builds the config.
func Load(envFile string) *Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Warning: Error loading %s: %s", envFile, err)
		}
	}
	return New()
}

func New() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 10*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 10*time.Second),

		MongoURI: getEnv("MONGOURI", ""),
		MongoDB:  getEnv("MONGO_DB", "swipepaddb"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		BatchWindow:     getEnvAsDuration("BATCH_WINDOW", 5*time.Second),
		DoubleTapWindow: getEnvAsDuration("DOUBLE_TAP_WINDOW", 300*time.Millisecond),
		OverlayDuration: getEnvAsDuration("OVERLAY_DURATION", time.Second),
		SessionIdleTTL:  getEnvAsDuration("SESSION_IDLE_TTL", 30*time.Minute),
		FeedSize:        getEnvAsInt("FEED_SIZE", 100),

		GestureProfilesFile: getEnv("GESTURE_PROFILES_FILE", ""),
		DefaultCurrency:     getEnv("DEFAULT_CURRENCY", "CENTS"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
