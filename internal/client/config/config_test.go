package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testACI = "9d0652a3-dcc3-4d11-975f-74d61598733f"

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "storagesync.db", cfg.DatabaseDSN)
	assert.True(t, cfg.IsPrimaryDevice)
	assert.Equal(t, "storage", cfg.S3Prefix)
	assert.Equal(t, 2*time.Minute, cfg.SyncTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SyncSchedule)
	assert.False(t, cfg.UseS3())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn":  "from-json.db",
		"local_aci":     testACI,
		"s3_bucket":     "json-bucket",
		"log_level":     "debug",
		"sync_schedule": "@every 1m",
	})
	t.Setenv("STORAGESYNC_S3_BUCKET", "env-bucket")
	t.Setenv("STORAGESYNC_LOG_LEVEL", "warn")

	cfg, err := Load([]string{"-c", path, "-log-level", "error", "-unrelated", "x"})
	require.NoError(t, err)

	assert.Equal(t, "from-json.db", cfg.DatabaseDSN)
	assert.Equal(t, "env-bucket", cfg.S3Bucket)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "@every 1m", cfg.SyncSchedule)
	assert.True(t, cfg.UseS3())
}

func TestLoad_RequiresLocalACI(t *testing.T) {
	_, err := Load([]string{"-d", filepath.Join(t.TempDir(), "x.db")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid local aci")
}

func TestLocalIdentifiers(t *testing.T) {
	pni := uuid.New()

	t.Run("full", func(t *testing.T) {
		cfg := &Config{LocalACI: testACI, LocalPNI: "PNI:" + pni.String(), LocalPhoneNumber: "+15555550100"}
		local, err := cfg.LocalIdentifiers()
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse(testACI), local.ACI)
		require.NotNil(t, local.PNI)
		assert.Equal(t, pni, *local.PNI)
		assert.Equal(t, "+15555550100", local.PhoneNumber)
	})

	t.Run("aci only", func(t *testing.T) {
		cfg := &Config{LocalACI: testACI}
		local, err := cfg.LocalIdentifiers()
		require.NoError(t, err)
		assert.Nil(t, local.PNI)
		assert.Empty(t, local.PhoneNumber)
	})

	t.Run("pni as aci", func(t *testing.T) {
		cfg := &Config{LocalACI: "PNI:" + pni.String()}
		_, err := cfg.LocalIdentifiers()
		require.Error(t, err)
	})

	t.Run("bad phone", func(t *testing.T) {
		cfg := &Config{LocalACI: testACI, LocalPhoneNumber: "5550100"}
		_, err := cfg.LocalIdentifiers()
		require.Error(t, err)
	})
}

func TestValidate_Timeout(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.LocalACI = testACI
	require.NoError(t, cfg.Validate())

	cfg.SyncTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestS3(t *testing.T) {
	cfg := &Config{S3Bucket: "b", S3Region: "r", S3BaseEndpoint: "http://minio:9000", S3AccessKey: "ak", S3SecretKey: "sk", S3Prefix: "p"}
	s3 := cfg.S3()
	assert.Equal(t, "b", s3.Bucket)
	assert.Equal(t, "r", s3.Region)
	assert.Equal(t, "http://minio:9000", s3.BaseEndpoint)
	assert.Equal(t, "ak", s3.AccessKey)
	assert.Equal(t, "sk", s3.SecretKey)
	assert.Equal(t, "p", s3.Prefix)
}
