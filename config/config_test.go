package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points secrets at an empty directory and clears variables that
// would leak in from the host environment.
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("RECIPE_API_CONFIG", "")
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	for _, key := range []string{
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_SSL_MODE", "DB_PATH", "JWT_SECRET", "REDIS_URL", "TOKEN_TTL", "S3_BUCKET",
		"RECIPE_CREATE_LIMIT", "RECIPE_CREATE_WINDOW", "CORS_ORIGINS", "SERVER_PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "recipes")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "recipe")
	t.Setenv("DB_SSL_MODE", "require")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "recipes", cfg.DBUser)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "require", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "8000", cfg.ServerPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60, cfg.RecipeCreateLimit)
	assert.Equal(t, time.Hour, cfg.RecipeCreateWindow)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadConfigSecretsOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JWT_SECRET", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("s3cr3t"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "s3cr3t", cfg.DBPassword)
}

func TestLoadConfigCIIgnoresSecrets(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CI", "true")
	t.Setenv("JWT_SECRET", "ci-secret")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, CI, cfg.Environment)
	assert.Equal(t, "ci-secret", cfg.JWTSecret)
}

func TestLoadConfigFromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "recipe-api.yaml")
	content := "db_driver: sqlite\ndb_path: /tmp/recipes.db\nrecipe_create_limit: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("RECIPE_API_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/recipes.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.RecipeCreateLimit)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	isolate(t)
	t.Setenv("TOKEN_TTL", "forever")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:        Production,
			ServerPort:         "8000",
			DBDriver:           DriverPostgres,
			DBHost:             "db",
			DBPort:             "5432",
			DBUser:             "app",
			DBPassword:         "pw",
			DBName:             "recipe",
			JWTSecret:          "0123456789abcdef0123456789abcdef",
			TokenTTL:           time.Hour,
			RecipeCreateLimit:  10,
			RecipeCreateWindow: time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret in production", func(c *Config) { c.JWTSecret = "short" }, "jwt_secret"},
		{"missing db password in production", func(c *Config) { c.DBPassword = "" }, "db_password"},
		{"sqlite in production", func(c *Config) { c.DBDriver = DriverSQLite; c.DBPath = "x.db" }, "db_driver"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "db_driver"},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }, "token_ttl"},
		{"missing host", func(c *Config) { c.DBHost = "" }, "db_host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var fields []string
			for _, e := range verrs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("Production"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("staging"))
}
