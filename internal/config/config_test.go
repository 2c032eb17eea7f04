package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:               "development",
		Port:              "8375",
		JWTSecret:         "secure-secret-at-least-32-chars-long",
		DBDriver:          "postgres",
		DBPassword:        "secure-password",
		DBSSLMode:         "require",
		StorageDriver:     "local",
		StorageLocalDir:   "./media",
		AvatarMaxUploadMB: 5,
		AvatarMaxEdgePx:   512,
		PurgeInterval:     time.Hour,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"unknown db driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"unknown storage driver", func(c *Config) { c.StorageDriver = "ftp" }, "STORAGE_DRIVER"},
		{"s3 without bucket", func(c *Config) { c.StorageDriver = "s3" }, "S3_BUCKET"},
		{"s3 without public url", func(c *Config) {
			c.StorageDriver = "s3"
			c.S3Bucket = "avatars"
		}, "S3_PUBLIC_BASE_URL"},
		{"zero upload limit", func(c *Config) { c.AvatarMaxUploadMB = 0 }, "AVATAR_MAX_UPLOAD_MB"},
		{"negative retention", func(c *Config) { c.SoftDeleteRetention = -time.Second }, "SOFT_DELETE_RETENTION"},
		{"retention without interval", func(c *Config) {
			c.SoftDeleteRetention = time.Hour
			c.PurgeInterval = 0
		}, "PURGE_INTERVAL"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "JWT_SECRET"},
		{"local identity in production", func(c *Config) {
			c.Env = "production"
			c.AllowLocalIdentity = true
		}, "ALLOW_LOCAL_IDENTITY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("sqlite skips postgres production checks", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.DBDriver = "sqlite"
		c.DBPassword = ""
		c.DBSSLMode = ""
		assert.NoError(t, c.Validate())
	})
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("STORAGE_DRIVER", " Local ")
	t.Setenv("PUBLIC_BASE_URL", "http://localhost:8375/")
	t.Setenv("SOFT_DELETE_RETENTION", "720h")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "local", c.StorageDriver)
	assert.Equal(t, "http://localhost:8375", c.PublicBaseURL)
	assert.Equal(t, 720*time.Hour, c.SoftDeleteRetention)
	assert.Equal(t, time.Hour, c.PurgeInterval)
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("CLUBCTL_SERVER_URL", "http://club.example:9000/")
	os.Unsetenv("CLUBCTL_TIMEOUT")

	cfg, err := LoadClientConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://club.example:9000", cfg.ServerURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.StateFile)
}
