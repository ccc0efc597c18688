package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret string

	// Internal service-to-service routes (ledger, reconciliation) are
	// guarded by an API key stored as a bcrypt hash.
	InternalAPIKeyHash string

	// Settlement collaborators
	GatewayBaseURL string
	CardBaseURL    string

	// Payment submission policy
	PaymentMaxAttempts int
	PaymentTimeout     time.Duration

	// Crypto envelope key material (PEM files, PKCS#8 or PKCS#1)
	SenderKeyPath   string
	ReceiverKeyPath string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "tibib"),
		DBPassword: getEnv("DB_PASSWORD", "tibib"),
		DBName:     getEnv("DB_NAME", "tibib"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		InternalAPIKeyHash: getEnv("INTERNAL_API_KEY_HASH", ""),

		GatewayBaseURL: getEnv("GATEWAY_BASE_URL", "http://localhost:8080/api/v1/simulator/gateway"),
		CardBaseURL:    getEnv("CARD_BASE_URL", "http://localhost:8080/api/v1/simulator/cards"),

		SenderKeyPath:   getEnv("SENDER_KEY_PATH", "keys/sender.pem"),
		ReceiverKeyPath: getEnv("RECEIVER_KEY_PATH", "keys/receiver.pem"),
	}

	config.PaymentMaxAttempts = getEnvInt("PAYMENT_MAX_ATTEMPTS", 5)

	// Per-attempt timeout for gateway calls. The upstream never hangs in
	// simulation, but a real gateway might.
	timeoutStr := getEnv("PAYMENT_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: invalid PAYMENT_TIMEOUT value '%s', falling back to 10s\n", timeoutStr)
		timeout = 10 * time.Second
	}
	config.PaymentTimeout = timeout

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves a positive integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}
