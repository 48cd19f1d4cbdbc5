package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Fetch    FetchConfig
	Workers  WorkersConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	APIKey       string
}

type DatabaseConfig struct {
	Path string
}

type FetchConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

type WorkersConfig struct {
	Count        int
	PollInterval time.Duration
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = FromEnv()
	return nil
}

// FromEnv builds a config from the current environment
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
			APIKey:       getEnv("SERVER_API_KEY", ""),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", ""),
		},
		Fetch: FetchConfig{
			Timeout:    getEnvAsMillis("FETCH_TIMEOUT_MS", 5000),
			Retries:    getEnvAsInt("FETCH_RETRIES", 20),
			RetryDelay: getEnvAsMillis("FETCH_RETRY_DELAY_MS", 300),
		},
		Workers: WorkersConfig{
			Count:        getEnvAsInt("ANALYSIS_WORKERS", 1),
			PollInterval: getEnvAsMillis("WORKER_POLL_INTERVAL_MS", 1000),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}
