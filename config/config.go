package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // overrides the individual DB_* values when set

	DBMaxOpenConns int
	DBMaxIdleConns int
	// DBSerializable runs attempt creation under SERIALIZABLE isolation (postgres/mysql only)
	DBSerializable bool

	JWTKey string

	LogLevel  string
	LogFormat string

	UploadServiceURL   string
	UploadServiceToken string
	UploadDir          string

	ProgressCron string
	Timezone     string
	CORSOrigins  string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port: getEnv("PORT", "3000"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lms"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBSerializable: getEnvBool("DB_SERIALIZABLE", true),

		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		UploadServiceURL:   getEnv("UPLOAD_SERVICE_URL", ""),
		UploadServiceToken: getEnv("UPLOAD_SERVICE_TOKEN", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "./public/uploads"),

		ProgressCron: getEnv("PROGRESS_CRON", "0 2 * * *"),
		Timezone:     getEnv("TIMEZONE", "UTC"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.DBDriver == "sqlite" && AppConfig.DBDSN == "" {
		log.Println("Warning: DB_DRIVER=sqlite without DB_DSN, falling back to lms.db in the working directory.")
	}

	InitLogger(AppConfig.LogLevel, AppConfig.LogFormat)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a bool or returns the default
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
