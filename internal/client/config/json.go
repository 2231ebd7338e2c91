package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/storagesync/internal/flagx"
	"github.com/dmitrijs2005/storagesync/internal/timex"
)

type JsonConfig struct {
	DatabaseDSN      string         `json:"database_dsn"`
	IsPrimaryDevice  *bool          `json:"primary_device"`
	LocalACI         string         `json:"local_aci"`
	LocalPNI         string         `json:"local_pni"`
	LocalPhoneNumber string         `json:"local_phone_number"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3AccessKey      string         `json:"s3_access_key"`
	S3SecretKey      string         `json:"s3_secret_key"`
	S3Prefix         string         `json:"s3_prefix"`
	SyncSchedule     string         `json:"sync_schedule"`
	SyncTimeout      timex.Duration `json:"sync_timeout"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseJson(config *Config, args []string) error {
	fileName := flagx.JsonConfigFlags(args)
	if fileName == "" {
		return nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", fileName, err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.IsPrimaryDevice != nil {
		config.IsPrimaryDevice = *c.IsPrimaryDevice
	}
	setString(&config.LocalACI, c.LocalACI)
	setString(&config.LocalPNI, c.LocalPNI)
	setString(&config.LocalPhoneNumber, c.LocalPhoneNumber)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Prefix, c.S3Prefix)
	setString(&config.SyncSchedule, c.SyncSchedule)
	if c.SyncTimeout.Duration != 0 {
		config.SyncTimeout = c.SyncTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	return nil
}
