package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultHTTPAddr      = ":8080"
	DefaultUploadDir     = "uploads"
	DefaultIndexSyncCron = "0 0 23 * * ?"
	DefaultAdminName     = "admin"
)

type ServiceConfig struct {
	HTTPAddr string

	UploadDir string
	OSS       OSSConfig

	ElasticsearchURL string
	IndexSyncCron    string

	// the admin user is seeded on start only when AdminSecret is set
	AdminName   string
	AdminSecret string
}

type OSSConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Enabled reports whether documents should be kept in an OSS bucket instead of the local upload dir.
func (c OSSConfig) Enabled() bool {
	return c.Bucket != ""
}

// LoadDotEnv loads variables from the given .env files (".env" by default) without overriding
// variables already present in the environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			logrus.Warnf("failed to load env file %s: %v", f, err)
		}
	}
}

func ParseFromEnv() *ServiceConfig {
	return &ServiceConfig{
		HTTPAddr:  envOrDefault("HTTP_ADDR", DefaultHTTPAddr),
		UploadDir: envOrDefault("UPLOAD_DIR", DefaultUploadDir),
		OSS: OSSConfig{
			Endpoint:  os.ExpandEnv(os.Getenv("OSS_ENDPOINT")),
			AccessKey: os.Getenv("OSS_ACCESS_KEY"),
			SecretKey: os.Getenv("OSS_SECRET_KEY"),
			Bucket:    os.Getenv("OSS_BUCKET"),
		},
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		IndexSyncCron:    envOrDefault("INDEX_SYNC_CRON", DefaultIndexSyncCron),
		AdminName:        envOrDefault("ADMIN_NAME", DefaultAdminName),
		AdminSecret:      os.Getenv("ADMIN_PASSWORD"),
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}
