package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultRegistryURL = "https://localhost:5001/Samples"
	DefaultTimeout     = 30 * time.Second
)

type Config struct {
	RegistryURL string
	Timeout     time.Duration
	LogLevel    string

	EnvFileLoaded bool

	// S3 settings, used only for s3:// archive URLs.
	ApiURL    string
	AccessKey string
	SecretKey string
	Region    string
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	envFileLoaded := godotenv.Load() == nil

	timeout, err := getDuration("REGISTRY_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, err
	}

	config := &Config{
		RegistryURL: getEnv("REGISTRY_URL", DefaultRegistryURL),
		Timeout:     timeout,
		LogLevel:    getEnv("LOG_LEVEL", ""),
		ApiURL:      getEnv("API_URL", ""),
		AccessKey:   getEnv("ACCESS_KEY", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		Region:      getEnv("REGION", ""),

		EnvFileLoaded: envFileLoaded,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a whole number of seconds.
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number of seconds", key, value)
	}
	return time.Duration(seconds) * time.Second, nil
}
