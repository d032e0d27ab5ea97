package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, NotifierMongo, cfg.Listing.Notifier)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxFileSize)
	assert.True(t, cfg.S3.UseSSL)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
database:
  uri: mongodb://db:27017
  name: school
s3:
  bucket_name: media
  public_base_url: https://cdn.example.com/media
jwt:
  expiration: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("DATABASE_NAME", "school_env")
	t.Setenv("LISTING_NOTIFIER", NotifierRedis)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.Database.URI)
	assert.Equal(t, "school_env", cfg.Database.Name)
	assert.Equal(t, "media", cfg.S3.BucketName)
	assert.Equal(t, "https://cdn.example.com/media", cfg.S3.PublicBaseURL)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, NotifierRedis, cfg.Listing.Notifier)
}

func TestLoadConfigMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
