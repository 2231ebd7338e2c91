package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/storagesync/internal/flagx"
)

var allowedFlags = []string{
	"-d", "-aci", "-pni", "-phone",
	"-bucket", "-region", "-endpoint", "-prefix",
	"-schedule", "-timeout", "-log-level", "-log-format",
}

func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, allowedFlags, "-primary")

	fs := flag.NewFlagSet("storagesync", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "SQLite database path")
	fs.BoolVar(&config.IsPrimaryDevice, "primary", config.IsPrimaryDevice, "run as the primary device")
	fs.StringVar(&config.LocalACI, "aci", config.LocalACI, "local account ACI")
	fs.StringVar(&config.LocalPNI, "pni", config.LocalPNI, "local account PNI")
	fs.StringVar(&config.LocalPhoneNumber, "phone", config.LocalPhoneNumber, "local phone number (E.164)")
	fs.StringVar(&config.S3Bucket, "bucket", config.S3Bucket, "S3 bucket holding the storage manifest")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "endpoint", config.S3BaseEndpoint, "custom S3 endpoint")
	fs.StringVar(&config.S3Prefix, "prefix", config.S3Prefix, "object key prefix")
	fs.StringVar(&config.SyncSchedule, "schedule", config.SyncSchedule, "cron schedule; empty runs once")
	fs.DurationVar(&config.SyncTimeout, "timeout", config.SyncTimeout, "timeout for a single sync pass")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "text or json")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}
