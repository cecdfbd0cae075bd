package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                 string
	DatabaseURL          string
	AppSecretKey         string
	MaxSigninAttempts    int
	AllowOrigins         []string
	LogstashTCPAddr      string
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucketProfile   string
	ProfileImageMaxBytes int64
	ElasticsearchURL     string
	ViewStatsLogIndex    string
	ViewStatsCacheTTL    string
	FrontendBaseURL      string
	GmailCredentialsFile string
	GmailSender          string
	SMTPHost             string
	SMTPPort             string
	SMTPUsername         string
	SMTPPassword         string
	SMTPFrom             string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	maxSignin := 5
	if v, err := strconv.Atoi(getenv("APP_MAX_SIGNIN", "5")); err == nil && v > 0 {
		maxSignin = v
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("PROFILE_IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	return Config{
		Port:                 getenv("PORT", "8080"),
		DatabaseURL:          must("DATABASE_URL"),
		AppSecretKey:         must("APP_SECRET_KEY"),
		MaxSigninAttempts:    maxSignin,
		AllowOrigins:         splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr:      getenv("LOGSTASH_TCP_ADDR", ""),
		MinIOEndpoint:        must("MINIO_ENDPOINT"),
		MinIOAccessKey:       must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:       must("MINIO_SECRET_KEY"),
		MinIOUseSSL:          getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketProfile:   getenv("MINIO_BUCKET_PROFILE", "vitae-profile-pictures"),
		ProfileImageMaxBytes: imageMax,
		ElasticsearchURL:     getenv("ELASTICSEARCH_URL", ""),
		ViewStatsLogIndex:    getenv("VIEW_STATS_LOG_INDEX", "vitae-api-logs"),
		ViewStatsCacheTTL:    getenv("VIEW_STATS_CACHE_TTL", "15m"),
		FrontendBaseURL:      getenv("FRONTEND_BASE_URL", ""),
		GmailCredentialsFile: getenv("GMAIL_CREDENTIALS_FILE", ""),
		GmailSender:          getenv("GMAIL_SENDER", ""),
		SMTPHost:             getenv("SMTP_HOST", ""),
		SMTPPort:             getenv("SMTP_PORT", ""),
		SMTPUsername:         getenv("SMTP_USERNAME", ""),
		SMTPPassword:         getenv("SMTP_PASSWORD", ""),
		SMTPFrom:             getenv("SMTP_FROM", ""),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
