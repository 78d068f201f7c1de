package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	CORSAllowOrigin string

	RedisURL string
	JobTTL   time.Duration

	TickBatch      int
	TriggerTimeout time.Duration
	TriggerBaseURL string

	BlobMode          string
	BlobHelperBase    string
	BlobFetchTimeout  time.Duration
	BlobDeleteTimeout time.Duration

	S3Bucket         string
	S3Endpoint       string
	S3Region         string
	AWSAccessKey     string
	AWSSecretKey     string
	S3ForcePathStyle bool

	OpenAIAPIKey string
	OpenAIModel  string
	LLMTimeout   time.Duration

	EnqueueRateLimit  int
	EnqueueRateWindow time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
		slog.Warn("bad int env, using default", "key", key, "value", v)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "true" || v == "1" {
			return true
		}
		if v == "false" || v == "0" {
			return false
		}
		slog.Warn("bad bool env, using default", "key", key, "value", v)
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
		slog.Warn("bad duration env, using default", "key", key, "value", v)
	}
	return def
}

func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	// try to find .env files starting from current directory and going up
	currentDir, err := os.Getwd()
	if err != nil {
		slog.Debug("failed to get current directory", "error", err)
		return
	}

	// look in current directory and up to 3 parent directories
	searchDirs := []string{currentDir}
	for i := 0; i < 3; i++ {
		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			break // reached root
		}
		searchDirs = append(searchDirs, parent)
		currentDir = parent
	}

	loadedAny := false
	for _, dir := range searchDirs {
		for _, envFile := range envFiles {
			envPath := filepath.Join(dir, envFile)
			if _, err := os.Stat(envPath); err == nil {
				if err := godotenv.Load(envPath); err == nil {
					slog.Debug("loaded environment file", "path", envPath)
					loadedAny = true
				} else {
					slog.Debug("failed to load environment file", "path", envPath, "error", err)
				}
			}
		}
		if loadedAny {
			break // stop searching once we find .env files in a directory
		}
	}

	if !loadedAny {
		slog.Debug("no .env files found, using system environment variables only")
	}
}

func Load() Config {
	loadEnvFiles()
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		CORSAllowOrigin: getenv("CORS_ALLOW_ORIGIN", "*"),

		RedisURL: getenv("REDIS_URL", "redis://localhost:6379"),
		JobTTL:   mustDuration("JOB_TTL", 24*time.Hour),

		TickBatch:      mustInt("TICK_BATCH", 3),
		TriggerTimeout: mustDuration("TRIGGER_TIMEOUT", 800*time.Millisecond),
		TriggerBaseURL: getenv("TRIGGER_BASE_URL", ""),

		BlobMode:          getenv("BLOB_MODE", "helper"),
		BlobHelperBase:    getenv("BLOB_HELPER_BASE", ""),
		BlobFetchTimeout:  mustDuration("BLOB_FETCH_TIMEOUT", 30*time.Second),
		BlobDeleteTimeout: mustDuration("BLOB_DELETE_TIMEOUT", 10*time.Second),

		S3Bucket:         getenv("S3_BUCKET", "lease-documents"),
		S3Endpoint:       getenv("S3_ENDPOINT", ""),
		S3Region:         getenv("S3_REGION", "us-east-1"),
		AWSAccessKey:     getenv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:     getenv("AWS_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle: getBool("S3_FORCE_PATH_STYLE", false),

		OpenAIAPIKey: getenv("OPENAI_API_KEY", ""),
		OpenAIModel:  getenv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:   mustDuration("LLM_TIMEOUT", 90*time.Second),

		EnqueueRateLimit:  mustInt("ENQUEUE_RATE_LIMIT", 30),
		EnqueueRateWindow: mustDuration("ENQUEUE_RATE_WINDOW", time.Minute),
	}
}
