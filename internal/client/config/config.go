package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/storagesync/internal/client/models"
	"github.com/dmitrijs2005/storagesync/internal/storageservice/remote"
)

// Config holds everything the storagesync binary needs to run a pass.
type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN"`

	IsPrimaryDevice  bool   `env:"PRIMARY_DEVICE"`
	LocalACI         string `env:"LOCAL_ACI"`
	LocalPNI         string `env:"LOCAL_PNI"`
	LocalPhoneNumber string `env:"LOCAL_PHONE_NUMBER"`

	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Prefix       string `env:"S3_PREFIX"`

	// SyncSchedule is a cron expression. Empty means a single pass.
	SyncSchedule string        `env:"SYNC_SCHEDULE"`
	SyncTimeout  time.Duration `env:"SYNC_TIMEOUT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
}

// LoadDefaults fills in values used when no other source sets them.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "storagesync.db"
	c.IsPrimaryDevice = true
	c.S3Region = "us-east-1"
	c.S3Prefix = "storage"
	c.SyncTimeout = 2 * time.Minute
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate checks that the local account identity is present and well formed.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return errors.New("database dsn is required")
	}
	if _, err := c.LocalIdentifiers(); err != nil {
		return err
	}
	if c.SyncTimeout <= 0 {
		return fmt.Errorf("sync timeout must be positive, got %s", c.SyncTimeout)
	}
	return nil
}

// LocalIdentifiers parses the configured identity of this account.
func (c *Config) LocalIdentifiers() (models.LocalIdentifiers, error) {
	aci, ok := models.ParseACI(c.LocalACI)
	if !ok {
		return models.LocalIdentifiers{}, fmt.Errorf("invalid local aci %q", c.LocalACI)
	}
	local := models.LocalIdentifiers{ACI: *aci}
	if c.LocalPNI != "" {
		pni, ok := models.ParsePNI(c.LocalPNI)
		if !ok {
			return models.LocalIdentifiers{}, fmt.Errorf("invalid local pni %q", c.LocalPNI)
		}
		local.PNI = pni
	}
	if c.LocalPhoneNumber != "" {
		if _, ok := models.ParseE164(c.LocalPhoneNumber); !ok {
			return models.LocalIdentifiers{}, fmt.Errorf("invalid local phone number %q", c.LocalPhoneNumber)
		}
		local.PhoneNumber = c.LocalPhoneNumber
	}
	return local, nil
}

// UseS3 reports whether a bucket is configured.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

func (c *Config) S3() remote.S3Config {
	return remote.S3Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Prefix:       c.S3Prefix,
	}
}

// LoadConfig builds a Config from defaults, an optional JSON file, the
// environment and finally the command line.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
