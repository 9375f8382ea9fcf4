package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the production backend used when no override is configured
const DefaultAPIBaseURL = "https://api.aicharacters.co"

// Config holds all application configuration
type Config struct {
	// Backend API configuration
	API struct {
		BaseURL           string
		RateLimit         float64
		RateLimitBurst    int
		ValidateResponses bool
	}

	// Durable client state (token + cached user)
	Storage struct {
		Driver        string
		Path          string
		DSN           string
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		KeyPrefix     string
		EncryptionKey string
	}

	// Companion server configuration
	Server struct {
		Host            string
		Port            string
		GRPCPort        string
		Env             string
		AllowedOrigins  []string
		RateLimit       float64
		RateLimitBurst  int
		ShutdownTimeout time.Duration
		HealthInterval  time.Duration
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Tracing and metrics
	Observability struct {
		TracingEnabled bool
		ServiceName    string
	}

	// Vault configuration, consumed by pkg/secrets
	Vault struct {
		Enabled     bool
		Address     string
		Token       string
		Namespace   string
		SecretsPath string
		Timeout     time.Duration
		MaxRetries  int
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = Load()
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Load reads a fresh Config from the environment without touching the singleton.
func Load() *Config {
	cfg := &Config{}

	// API config. VITE_API_URL is honoured so a shared .env works for the web build too.
	cfg.API.BaseURL = strings.TrimRight(getEnvString("API_URL", getEnvString("VITE_API_URL", DefaultAPIBaseURL)), "/")
	cfg.API.RateLimit = getEnvFloat("API_RATE_LIMIT", 0)
	cfg.API.RateLimitBurst = getEnvInt("API_RATE_LIMIT_BURST", 1)
	cfg.API.ValidateResponses = getEnvBool("API_VALIDATE_RESPONSES", true)

	// Storage config
	cfg.Storage.Driver = getEnvString("STORAGE_DRIVER", "file")
	cfg.Storage.Path = getEnvString("STORAGE_PATH", defaultStoragePath())
	cfg.Storage.DSN = getEnvString("STORAGE_DSN", "")
	cfg.Storage.RedisAddr = getEnvString("REDIS_URL", "localhost:6379")
	cfg.Storage.RedisPassword = getEnvString("REDIS_PASSWORD", "")
	cfg.Storage.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.Storage.KeyPrefix = getEnvString("STORAGE_KEY_PREFIX", "aicharacters:")
	cfg.Storage.EncryptionKey = getEnvString("STORAGE_ENCRYPTION_KEY", "")

	// Server config
	cfg.Server.Host = getEnvString("HOST", "127.0.0.1")
	cfg.Server.Port = getEnvString("PORT", "8090")
	cfg.Server.GRPCPort = getEnvString("GRPC_PORT", "9090")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	// Only the companion's own UI may call it cross-origin unless configured otherwise
	cfg.Server.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{
		"http://localhost:" + cfg.Server.Port,
		"http://127.0.0.1:" + cfg.Server.Port,
	})
	cfg.Server.RateLimit = getEnvFloat("RATE_LIMIT", 10)
	cfg.Server.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 20)
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second)
	cfg.Server.HealthInterval = getEnvDuration("HEALTH_INTERVAL", 30*time.Second)

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Observability config
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "aicharacters-client")

	// Vault config
	cfg.Vault.Enabled = getEnvBool("VAULT_ENABLED", false)
	cfg.Vault.Address = getEnvString("VAULT_ADDR", "")
	cfg.Vault.Token = getEnvString("VAULT_TOKEN", "")
	cfg.Vault.Namespace = getEnvString("VAULT_NAMESPACE", "")
	cfg.Vault.SecretsPath = getEnvString("VAULT_SECRETS_PATH", "aicharacters-client")
	cfg.Vault.Timeout = getEnvDuration("VAULT_TIMEOUT", 10*time.Second)
	cfg.Vault.MaxRetries = getEnvInt("VAULT_MAX_RETRIES", 3)

	return cfg
}

// IsProduction reports whether the companion runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".aicharacters/state.json"
	}
	return dir + "/aicharacters/state.json"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
