package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers understood by the database package.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const devJWTSecret = "development-only-jwt-secret-change-me"

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration, empty disables the redis backed rate limiter
	RedisURL string

	// Token configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Recipe image storage, empty bucket disables uploads
	S3Bucket  string
	AWSRegion string

	// Recipe creation rate limit per user
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration

	LogLevel string
}

// secretKeys are the configuration keys that may be provided as Docker secrets.
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_url",
}

// LoadConfig creates a new Config instance with values from the config file,
// environment variables and Docker secrets, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v)
	if path := os.Getenv("RECIPE_API_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("recipe-api")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/recipe-api")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// CI takes secrets from the environment only
	if env != CI {
		for _, key := range secretKeys {
			if value := readSecret(key); value != "" {
				v.Set(key, value)
			}
		}
	}

	cfg, err := fromViper(v, env)
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8000")
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("db_driver", DriverPostgres)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "recipe")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "recipe.db")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("recipe_create_limit", 60)
	v.SetDefault("recipe_create_window", "1h")
	v.SetDefault("log_level", "info")

	// keys without a default still need binding for AutomaticEnv lookups
	for _, key := range []string{"db_password", "jwt_secret", "redis_url", "s3_bucket"} {
		_ = v.BindEnv(key)
	}
}

func fromViper(v *viper.Viper, env Environment) (*Config, error) {
	ttl, err := time.ParseDuration(v.GetString("token_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid token_ttl: %w", err)
	}
	window, err := time.ParseDuration(v.GetString("recipe_create_window"))
	if err != nil {
		return nil, fmt.Errorf("invalid recipe_create_window: %w", err)
	}

	cfg := &Config{
		Environment:        env,
		ServerHost:         v.GetString("server_host"),
		ServerPort:         v.GetString("server_port"),
		CORSOrigins:        splitList(v.GetString("cors_origins")),
		DBDriver:           strings.ToLower(v.GetString("db_driver")),
		DBHost:             v.GetString("db_host"),
		DBPort:             v.GetString("db_port"),
		DBUser:             v.GetString("db_user"),
		DBPassword:         v.GetString("db_password"),
		DBName:             v.GetString("db_name"),
		DBSSLMode:          v.GetString("db_ssl_mode"),
		DBPath:             v.GetString("db_path"),
		RedisURL:           v.GetString("redis_url"),
		JWTSecret:          v.GetString("jwt_secret"),
		TokenTTL:           ttl,
		S3Bucket:           v.GetString("s3_bucket"),
		AWSRegion:          v.GetString("aws_region"),
		RecipeCreateLimit:  v.GetInt("recipe_create_limit"),
		RecipeCreateWindow: window,
		LogLevel:           v.GetString("log_level"),
	}

	if cfg.JWTSecret == "" && (env == Development || env == Test) {
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL builds a postgres:// URL, the form lib/pq and migration tooling accept.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
