package server

import (
	"os"
	"strconv"
)

// Config is the HTTP adapter's runtime configuration.
type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	BodyLimit    int // bytes
}

// LoadConfig reads the configuration from the environment. defaultPort is
// used when PORT is unset.
func LoadConfig(defaultPort string) *Config {
	if defaultPort == "" {
		defaultPort = "3000"
	}
	return &Config{
		Port:         getEnv("PORT", defaultPort),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		BodyLimit:    getEnvAsInt("BODY_LIMIT", 4*1024*1024),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
