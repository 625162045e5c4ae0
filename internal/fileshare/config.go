// Package fileshare implements the FileShare web service: a small
// upload/download front end over an S3 bucket with a PostgreSQL
// connectivity check. It is the workload the deployment provisions, and
// reads its configuration from the environment the deployment injects.
package fileshare

import (
	"fmt"
	"os"
)

// Config is the service configuration, read entirely from the environment.
type Config struct {
	Bucket string
	Region string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ListenAddr string
}

// FromEnv reads the configuration from the environment variables the
// deployment injects into the workload.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Bucket:     os.Getenv("S3_BUCKET"),
		Region:     envOr("AWS_DEFAULT_REGION", "us-east-1"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "postgres"),
		ListenAddr: envOr("LISTEN_ADDR", ":5000"),
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}
	return cfg, nil
}

// ConnString assembles the PostgreSQL connection string from the injected
// parameters.
func (c *Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
