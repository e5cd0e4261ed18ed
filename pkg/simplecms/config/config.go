package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
	cachememory "github.com/tendant/simple-cms/pkg/simplecms/cache/memory"
	"github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	repopg "github.com/tendant/simple-cms/pkg/simplecms/repo/postgres"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
	s3storage "github.com/tendant/simple-cms/pkg/simplecms/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		DefaultFileBackend: "memory",
		FileBackends: []FileBackendConfig{
			{
				Name:   "memory",
				Type:   "memory",
				Config: map[string]interface{}{},
			},
		},
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the simple-cms service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// File storage configuration
	DefaultFileBackend string
	FileBackends       []FileBackendConfig

	// Server options
	EnableEventLogging bool
}

// FileBackendConfig represents configuration for a file storage backend
type FileBackendConfig struct {
	Name   string
	Type   string // "memory", "s3"
	Config map[string]interface{}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	found := false
	for _, backend := range c.FileBackends {
		if backend.Name == c.DefaultFileBackend {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default file backend '%s' not found in configured backends", c.DefaultFileBackend)
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (simplecms.Service, error) {
	var options []simplecms.Option

	repo, err := c.buildRepository()
	if err != nil {
		return nil, err
	}
	options = append(options, simplecms.WithRepository(repo))
	options = append(options, simplecms.WithCache(cachememory.New()))

	if c.EnableEventLogging {
		options = append(options, simplecms.WithEventBus(simplecms.NewLogEventBus()))
	}

	for _, backend := range c.FileBackends {
		store, err := buildFileStore(backend)
		if err != nil {
			return nil, fmt.Errorf("building file backend %q: %w", backend.Name, err)
		}
		options = append(options, simplecms.WithFileStore(backend.Name, store))
	}

	return simplecms.New(options...)
}

func (c *ServerConfig) buildRepository() (simplecms.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.DatabaseType)
}

func buildFileStore(backend FileBackendConfig) (simplecms.FileStore, error) {
	switch backend.Type {
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		cfg := s3storage.Config{
			Bucket:          stringValue(backend.Config, "bucket"),
			Region:          stringValue(backend.Config, "region"),
			AccessKeyID:     stringValue(backend.Config, "access_key_id"),
			SecretAccessKey: stringValue(backend.Config, "secret_access_key"),
			Endpoint:        stringValue(backend.Config, "endpoint"),
			UsePathStyle:    boolValue(backend.Config, "use_path_style"),
		}
		return s3storage.New(cfg)
	}
	return nil, fmt.Errorf("unsupported file backend type %q", backend.Type)
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolValue(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}
