package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gridironhq/site-content/pkg/sitecontent"
	"github.com/gridironhq/site-content/pkg/sitecontent/audit"
	fsstorage "github.com/gridironhq/site-content/pkg/sitecontent/storage/fs"
	memorystorage "github.com/gridironhq/site-content/pkg/sitecontent/storage/memory"
	s3storage "github.com/gridironhq/site-content/pkg/sitecontent/storage/s3"
)

// ServerConfig represents server configuration for the site-content service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Storage configuration
	StorageType string `env:"STORAGE_TYPE" env-default:"memory"` // "memory", "fs", "s3"
	StorageDir  string `env:"STORAGE_DIR" env-default:"./data/storage"`

	S3Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	S3Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`

	// Delivery proxy
	ProxyPrefix   string `env:"PROXY_PREFIX" env-default:"/p"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-default:""` // degraded-path fallback for proxy reads

	// Admin auth
	JWTSecret      string `env:"ADMIN_JWT_SECRET" env-default:""`
	AdminAllowlist string `env:"ADMIN_ALLOWLIST" env-default:""` // comma-separated emails

	// Audit log (optional)
	DatabaseURL string `env:"DATABASE_URL" env-default:""`
	DBSchema    string `env:"DB_SCHEMA" env-default:"content"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.StorageType {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("unsupported storage type: %s (use 'memory', 'fs' or 's3')", c.StorageType)
	}

	if c.StorageType == "s3" && c.S3Bucket == "" {
		return errors.New("AWS_S3_BUCKET is required when using s3 storage")
	}

	if !strings.HasPrefix(c.ProxyPrefix, "/") {
		return fmt.Errorf("proxy prefix must start with '/': %s", c.ProxyPrefix)
	}

	// An empty HS256 secret makes admin tokens forgeable, so an admin surface
	// must never be enabled without one.
	if c.JWTSecret == "" && (c.AdminAllowlist != "" || c.Environment == "production") {
		return errors.New("ADMIN_JWT_SECRET is required when admin access is configured")
	}

	return nil
}

// Allowlist returns the configured admin emails, lowercased.
func (c *ServerConfig) Allowlist() []string {
	var emails []string
	for _, e := range strings.Split(c.AdminAllowlist, ",") {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// BuildObjectStore creates the configured ObjectStore backend.
func (c *ServerConfig) BuildObjectStore() (sitecontent.ObjectStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.StorageDir})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (sitecontent.Service, error) {
	store, err := c.BuildObjectStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build object store: %w", err)
	}

	options := []sitecontent.Option{
		sitecontent.WithObjectStore(store),
	}

	if c.DatabaseURL != "" {
		repo, err := c.BuildAuditRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to build audit repository: %w", err)
		}
		options = append(options, sitecontent.WithAuditLog(repo))
	}

	return sitecontent.New(options...)
}

// BuildAuditRepository connects the postgres audit log.
func (c *ServerConfig) BuildAuditRepository() (audit.Repository, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if c.DBSchema != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = c.DBSchema
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return audit.NewPostgresWithPool(pool), nil
}
