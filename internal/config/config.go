package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	AWS     AWSConfig     `json:"aws"`
	Auth    AuthConfig    `json:"auth"`
	Sweeper SweeperConfig `json:"sweeper"`
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// AWSConfig holds the region, table and bucket names, and optional static
// credentials / endpoint override for running against DynamoDB Local and MinIO.
type AWSConfig struct {
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	EndpointURL     string `json:"endpoint_url"`
	ItemsTable      string `json:"items_table"`
	CodesTable      string `json:"codes_table"`
	UploadBucket    string `json:"upload_bucket"`
	// PublicBaseURL is the read-side origin for uploaded images
	// (the bucket's public or CDN URL, no trailing slash).
	PublicBaseURL string `json:"public_base_url"`
	// PresignTTLSeconds bounds how long an issued upload slot stays writable.
	PresignTTLSeconds int `json:"presign_ttl_seconds"`
}

// AuthConfig
type AuthConfig struct {
	JWTSecret string `json:"jwt_secret"`
}

// SweeperConfig drives the orphaned-upload janitor.
type SweeperConfig struct {
	Schedule    string `json:"schedule"`
	GraceHours  int    `json:"grace_hours"`
	ObjectScope string `json:"object_scope"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		AWS: AWSConfig{
			Region:            "eu-central-1",
			ItemsTable:        "foundlink-items",
			CodesTable:        "foundlink-verification-codes",
			UploadBucket:      "foundlink-item-images",
			PresignTTLSeconds: 300,
		},
		Sweeper: SweeperConfig{
			Schedule:    "@hourly",
			GraceHours:  24,
			ObjectScope: "uploads/",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.AWS.AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.AWS.SecretAccessKey = secret
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		config.AWS.EndpointURL = endpoint
	}
	if table := os.Getenv("ITEMS_TABLE"); table != "" {
		config.AWS.ItemsTable = table
	}
	if table := os.Getenv("CODES_TABLE"); table != "" {
		config.AWS.CodesTable = table
	}
	if bucket := os.Getenv("UPLOAD_BUCKET"); bucket != "" {
		config.AWS.UploadBucket = bucket
	}
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		config.AWS.PublicBaseURL = base
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if schedule := os.Getenv("SWEEPER_SCHEDULE"); schedule != "" {
		config.Sweeper.Schedule = schedule
	}
}

// PresignTTL returns the upload-slot lifetime as a duration.
func (c *AWSConfig) PresignTTL() time.Duration {
	return time.Duration(c.PresignTTLSeconds) * time.Second
}

// GracePeriod returns how old an unreferenced upload must be before the
// sweeper may delete it.
func (c *SweeperConfig) GracePeriod() time.Duration {
	return time.Duration(c.GraceHours) * time.Hour
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
