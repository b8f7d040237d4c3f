package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Mongo   MongoConfig
	Storage StorageConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type StorageConfig struct {
	// FallbackFile is the JSON file used while the document store is down.
	FallbackFile string

	// FallbackEnabled turns the file fallback off for deployments where a
	// lost submission is preferable to writing local state (e.g. ephemeral
	// serverless filesystems).
	FallbackEnabled bool

	// ConnectAttempts and RetryDelay bound the lazy reconnect loop taken
	// before a write gives up on the primary store.
	ConnectAttempts int
	RetryDelay      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "film-survey"),
			Collection:     getEnv("MONGODB_COLLECTION", "responses"),
			ConnectTimeout: getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			FallbackFile:    getEnv("FALLBACK_FILE", "survey-responses.json"),
			FallbackEnabled: getEnvAsBool("FALLBACK_ENABLED", true),
			ConnectAttempts: getEnvAsInt("MONGO_CONNECT_ATTEMPTS", 3),
			RetryDelay:      getEnvAsDuration("MONGO_RETRY_DELAY", 500*time.Millisecond),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
