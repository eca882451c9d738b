package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:               "development",
		Port:              "8080",
		JWTSecret:         "secure-secret-at-least-32-chars-long",
		DBPassword:        "secure-password",
		DBSSLMode:         "require",
		ImageRootDir:      "./uploads",
		ImageAdsDir:       "ads",
		ImageAvatarsDir:   "avatars",
		ImageMaxSizeMB:    10,
		ImageAllowedTypes: "jpg,jpeg,png,webp",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Blank image root", func(c *Config) { c.ImageRootDir = "  " }, true},
		{"Same image subdirectories", func(c *Config) { c.ImageAvatarsDir = "ads" }, true},
		{"Zero max size", func(c *Config) { c.ImageMaxSizeMB = 0 }, true},
		{"No allowed types", func(c *Config) { c.ImageAllowedTypes = " , " }, true},
		{"Production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"Production weak DB password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production valid", func(c *Config) { c.Env = "production" }, false},
		{"Development short secret only warns", func(c *Config) { c.JWTSecret = "short" }, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_AllowedImageTypes(t *testing.T) {
	t.Parallel()
	c := &Config{ImageAllowedTypes: " JPG, png ,,webp "}
	assert.Equal(t, []string{"jpg", "png", "webp"}, c.AllowedImageTypes())
}

func TestConfig_MaxImageBytes(t *testing.T) {
	t.Parallel()
	c := &Config{ImageMaxSizeMB: 10}
	assert.Equal(t, int64(10*1024*1024), c.MaxImageBytes())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("IMAGE_MAX_SIZE_MB", "3")
	t.Setenv("IMAGE_ALLOWED_TYPES", "png")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 3, c.ImageMaxSizeMB)
	assert.Equal(t, []string{"png"}, c.AllowedImageTypes())
	assert.Equal(t, "ads", c.ImageAdsDir)
	assert.Equal(t, "avatars", c.ImageAvatarsDir)
	assert.Equal(t, "/images/", c.ImageBaseURL)
}
