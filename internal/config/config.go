package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	RedisAddr   string

	QueueKey        string
	ProcessingKey   string
	Workers         int
	RequeueInterval time.Duration
	MediaRoot       string

	LogLevel  string
	LogFormat string

	Transcoding TranscodingConfig
	AWS         AWSConfig
}

type TranscodingConfig struct {
	Enabled bool
	Backend string
	// WebhookAPIKey empty means the webhook route is not mounted.
	WebhookAPIKey string
}

type AWSConfig struct {
	Region               string
	Bucket               string
	MediaConvertRole     string
	MediaConvertEndpoint string
}

// Load reads the process environment. POSTGRES_DSN and REDIS_ADDR are required.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		QueueKey:        envOr("REDIS_QUEUE_KEY", "media:transcode:queue"),
		ProcessingKey:   envOr("REDIS_PROCESSING_KEY", "media:transcode:processing"),
		Workers:         envIntOr("WORKERS", 4),
		RequeueInterval: envDurationOr("REQUEUE_INTERVAL", 30*time.Second),
		MediaRoot:       envOr("MEDIA_ROOT", "media"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "json"),
		Transcoding: TranscodingConfig{
			Enabled:       envBoolOr("TRANSCODING_ENABLED", false),
			Backend:       envOr("TRANSCODING_BACKEND", "mediaconvert"),
			WebhookAPIKey: os.Getenv("WEBHOOK_API_KEY"),
		},
		AWS: AWSConfig{
			Region:               os.Getenv("AWS_REGION"),
			Bucket:               os.Getenv("AWS_STORAGE_BUCKET_NAME"),
			MediaConvertRole:     envOr("AWS_MEDIACONVERT_ROLE_NAME", "MediaConvert_Default_Role"),
			MediaConvertEndpoint: os.Getenv("AWS_MEDIACONVERT_ENDPOINT"),
		},
	}

	var missing []string
	if cfg.PostgresDSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if cfg.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing env: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBoolOr(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactDSN masks the password in a postgres URL: user:pass@ -> user:****@.
func RedactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}
