package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	// Step source selection: "postgres" or "odata"
	StepSource  string
	DatabaseURL string
	// OData gateway
	ODataServiceURL string
	ODataUser       string
	ODataPassword   string
	ODataTimeoutSec int
	// Authentication is enabled when a JWKS URL is configured
	AuthJWKSURL string
	// Log file output (empty = stdout only)
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		StepSource:      getEnv("STEP_SOURCE", "postgres"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ODataServiceURL: getEnv("ODATA_SERVICE_URL", ""),
		ODataUser:       getEnv("ODATA_USER", ""),
		ODataPassword:   getEnv("ODATA_PASSWORD", ""),
		ODataTimeoutSec: getEnvInt("ODATA_TIMEOUT_SECONDS", 30),
		AuthJWKSURL:     getEnv("AUTH_JWKS_URL", ""),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
