// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "resale-hub-dev-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env            string `mapstructure:"APP_ENV"`
	Port           string `mapstructure:"PORT"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	DBHost               string `mapstructure:"DB_HOST"`
	DBPort               string `mapstructure:"DB_PORT"`
	DBUser               string `mapstructure:"DB_USER"`
	DBPassword           string `mapstructure:"DB_PASSWORD"`
	DBName               string `mapstructure:"DB_NAME"`
	DBSSLMode            string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns       int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns       int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMin int    `mapstructure:"DB_CONN_MAX_LIFETIME_MIN"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	ImageRootDir      string `mapstructure:"IMAGE_ROOT_DIR"`
	ImageAdsDir       string `mapstructure:"IMAGE_ADS_DIR"`
	ImageAvatarsDir   string `mapstructure:"IMAGE_AVATARS_DIR"`
	ImageMaxSizeMB    int    `mapstructure:"IMAGE_MAX_SIZE_MB"`
	ImageAllowedTypes string `mapstructure:"IMAGE_ALLOWED_TYPES"`
	ImageBaseURL      string `mapstructure:"IMAGE_BASE_URL"`
	ImageCacheSeconds int    `mapstructure:"IMAGE_CACHE_SECONDS"`

	RateLimitAuthPerMinute int `mapstructure:"RATE_LIMIT_AUTH_PER_MINUTE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	DevRootUsername string `mapstructure:"DEV_ROOT_USERNAME"`
	DevRootPassword string `mapstructure:"DEV_ROOT_PASSWORD"`
}

var keys = map[string]any{
	"APP_ENV":                    "development",
	"PORT":                       "8080",
	"LOG_LEVEL":                  "info",
	"ALLOWED_ORIGINS":            "http://localhost:3000,http://127.0.0.1:3000",
	"FEATURE_FLAGS":              "",
	"DB_HOST":                    "localhost",
	"DB_PORT":                    "5432",
	"DB_USER":                    "user",
	"DB_PASSWORD":                "password",
	"DB_NAME":                    "resale_hub",
	"DB_SSLMODE":                 "disable",
	"DB_MAX_OPEN_CONNS":          25,
	"DB_MAX_IDLE_CONNS":          5,
	"DB_CONN_MAX_LIFETIME_MIN":   30,
	"REDIS_URL":                  "localhost:6379",
	"JWT_SECRET":                 defaultJWTSecret,
	"JWT_ISSUER":                 "resale-hub-api",
	"JWT_AUDIENCE":               "resale-hub-app",
	"JWT_TTL_HOURS":              24,
	"IMAGE_ROOT_DIR":             "./uploads",
	"IMAGE_ADS_DIR":              "ads",
	"IMAGE_AVATARS_DIR":          "avatars",
	"IMAGE_MAX_SIZE_MB":          10,
	"IMAGE_ALLOWED_TYPES":        "jpg,jpeg,png,webp",
	"IMAGE_BASE_URL":             "/images/",
	"IMAGE_CACHE_SECONDS":        3600,
	"RATE_LIMIT_AUTH_PER_MINUTE": 10,
	"TRACING_ENABLED":            false,
	"TRACING_EXPORTER":           "stdout",
	"OTLP_ENDPOINT":              "localhost:4318",
	"TRACING_SAMPLER_RATIO":      1.0,
	"DEV_ROOT_USERNAME":          "admin@resalehub.local",
	"DEV_ROOT_PASSWORD":          "",
}

// LoadConfig loads application configuration from config.yml, .env and the environment,
// in increasing order of precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The yml file is optional; env vars and defaults are enough to boot.
	_ = v.ReadInConfig()

	for key, value := range keys {
		v.SetDefault(key, value)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(c.ImageRootDir) == "" {
		return errors.New("IMAGE_ROOT_DIR is required")
	}
	if c.ImageAdsDir == "" || c.ImageAvatarsDir == "" {
		return errors.New("IMAGE_ADS_DIR and IMAGE_AVATARS_DIR are required")
	}
	if c.ImageAdsDir == c.ImageAvatarsDir {
		return errors.New("IMAGE_ADS_DIR and IMAGE_AVATARS_DIR must differ")
	}
	if c.ImageMaxSizeMB <= 0 {
		return errors.New("IMAGE_MAX_SIZE_MB must be positive")
	}
	if len(c.AllowedImageTypes()) == 0 {
		return errors.New("IMAGE_ALLOWED_TYPES must list at least one type")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// IsDevelopment reports whether APP_ENV is development or unset.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// AllowedImageTypes returns the normalized list of accepted image subtypes (e.g. "png").
func (c *Config) AllowedImageTypes() []string {
	var out []string
	for _, t := range strings.Split(c.ImageAllowedTypes, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// MaxImageBytes returns the upload limit in bytes.
func (c *Config) MaxImageBytes() int64 {
	return int64(c.ImageMaxSizeMB) << 20
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
