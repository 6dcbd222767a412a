package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

type Config struct {
	Port                    string
	Env                     string
	PostgresConnStr         string
	UploadDir               string
	StorageBackend          string
	AWSAccessKeyID          string
	AWSSecretAccessKey      string
	S3Bucket                string
	AWSRegion               string
	S3URLExpires            int // seconds
	MaxFilesPerPost         int
	PushEndpoint            string
	FirebaseCredentialsPath string
	MetricsPort             string
}

// Load resolves the configuration from the environment exactly at startup.
// A .env file is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		UploadDir:               getEnv("UPLOAD_DIR", "static/uploads"),
		StorageBackend:          getEnv("STORAGE_BACKEND", BackendLocal),
		AWSAccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:                getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:               getEnv("AWS_REGION", "us-east-1"),
		S3URLExpires:            getEnvInt("S3_URL_EXPIRES", 86400),
		MaxFilesPerPost:         getEnvInt("MAX_FILES_PER_POST", 20),
		PushEndpoint:            getEnv("PUSH_ENDPOINT", "https://exp.host/--/api/v2/push/send"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
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
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
