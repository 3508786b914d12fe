package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"server_port", "is required"})
	}

	switch cfg.DBDriver {
	case DriverPostgres:
		for field, value := range map[string]string{
			"db_host": cfg.DBHost,
			"db_port": cfg.DBPort,
			"db_user": cfg.DBUser,
			"db_name": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{field, "is required for the postgres driver"})
			}
		}
	case DriverSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{"db_path", "is required for the sqlite driver"})
		}
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{"db_driver", "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{"db_driver", fmt.Sprintf("unknown driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", "is required"})
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < minProductionSecretLength {
		errs = append(errs, ValidationError{"jwt_secret", fmt.Sprintf("must be at least %d characters in production", minProductionSecretLength)})
	}

	if cfg.Environment == Production && cfg.DBPassword == "" {
		errs = append(errs, ValidationError{"db_password", "is required in production"})
	}

	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"token_ttl", "must be positive"})
	}

	if cfg.RecipeCreateLimit <= 0 {
		errs = append(errs, ValidationError{"recipe_create_limit", "must be positive"})
	}
	if cfg.RecipeCreateWindow <= 0 {
		errs = append(errs, ValidationError{"recipe_create_window", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
