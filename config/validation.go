package config

import (
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is usable.
func ValidateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return ValidationError{Field: "JWT_SECRET", Message: "must be set"}
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}
	}
	if cfg.DBDriver == "postgres" {
		if cfg.DBHost == "" {
			return ValidationError{Field: "DB_HOST", Message: "must be set"}
		}
		if cfg.DBName == "" {
			return ValidationError{Field: "DB_NAME", Message: "must be set"}
		}
	}
	if cfg.MinCookingTime < 1 {
		return ValidationError{Field: "MIN_COOKING_TIME", Message: "must be at least 1"}
	}
	if cfg.MinIngredientAmount < 1 {
		return ValidationError{Field: "MIN_INGREDIENT_AMOUNT", Message: "must be at least 1"}
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return ValidationError{Field: "DEFAULT_PAGE_SIZE", Message: "must be between 1 and MAX_PAGE_SIZE"}
	}
	return nil
}
