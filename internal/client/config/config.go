// Package config loads runtime configuration for the clinicauth CLI.
//
// Sources, in increasing precedence: built-in defaults, CLINICAUTH_*
// environment variables, a JSON file named by -c or -config, and short
// command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider modes.
const (
	ProviderGRPC   = "grpc"
	ProviderMemory = "memory"
)

// Document store backends.
const (
	BackendGRPC      = "grpc"
	BackendDatastore = "datastore"
	BackendS3        = "s3"
)

// Session storages.
const (
	SessionSQLite = "sqlite"
	SessionFile   = "file"
)

// Config holds runtime settings for the clinicauth CLI.
//
// An empty SessionFile means storage.json under the user config directory.
// ProviderMode "memory" keeps accounts and profiles in process and ignores
// the server and document backend settings.
type Config struct {
	ServerEndpointAddr  string        `env:"CLINICAUTH_SERVER_ADDR"`
	ProviderMode        string        `env:"CLINICAUTH_PROVIDER"`
	DocumentBackend     string        `env:"CLINICAUTH_DOCUMENTS"`
	DatabasePath        string        `env:"CLINICAUTH_DB_PATH"`
	SessionStorage      string        `env:"CLINICAUTH_SESSION_STORAGE"`
	SessionFile         string        `env:"CLINICAUTH_SESSION_FILE"`
	OnlineCheckInterval time.Duration `env:"CLINICAUTH_ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `env:"CLINICAUTH_LOG_LEVEL"`

	Datastore DatastoreConfig `envPrefix:"CLINICAUTH_DATASTORE_"`
	S3        S3Config        `envPrefix:"CLINICAUTH_S3_"`
}

type DatastoreConfig struct {
	ProjectID string `env:"PROJECT"`
	Namespace string `env:"NAMESPACE"`
	// Endpoint points at an emulator; credentials are skipped when set.
	Endpoint string `env:"ENDPOINT"`
}

type S3Config struct {
	Bucket    string `env:"BUCKET"`
	Prefix    string `env:"PREFIX"`
	Region    string `env:"REGION"`
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ProviderMode = ProviderGRPC
	c.DocumentBackend = BackendGRPC
	c.DatabasePath = "clinicauth.db"
	c.SessionStorage = SessionSQLite
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
	c.Datastore.Namespace = "clinicauth"
	c.S3.Prefix = "clinicauth"
	c.S3.Region = "us-east-1"
}

// Validate rejects unknown mode names.
func (c *Config) Validate() error {
	switch c.ProviderMode {
	case ProviderGRPC, ProviderMemory:
	default:
		return fmt.Errorf("unknown provider mode %q", c.ProviderMode)
	}
	switch c.DocumentBackend {
	case BackendGRPC:
	case BackendDatastore:
		if c.Datastore.ProjectID == "" {
			return fmt.Errorf("datastore backend needs a project id")
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 backend needs a bucket")
		}
	default:
		return fmt.Errorf("unknown document backend %q", c.DocumentBackend)
	}
	switch c.SessionStorage {
	case SessionSQLite, SessionFile:
	default:
		return fmt.Errorf("unknown session storage %q", c.SessionStorage)
	}
	return nil
}

func parseEnv(c *Config) {
	if err := env.Parse(c); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
