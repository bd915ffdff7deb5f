// Package config provides configuration management for the theory engine.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// ValidateStruct validates any tagged struct, used for request payloads
func (cv *CustomValidator) ValidateStruct(s interface{}) error {
	err := cv.validator.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCrossField(cfg *Config) error {
	if cfg.GameStore.Backend == "http" && cfg.GameStore.APIURL == "" {
		return fmt.Errorf("game_store.api_url is required when backend is http")
	}
	if cfg.Engine.ModerateLiftDelta >= cfg.Engine.StrongLiftDelta {
		return fmt.Errorf("engine.moderate_lift_delta must be below engine.strong_lift_delta")
	}
	if cfg.Engine.ModerateSampleSize >= cfg.Engine.LargeSampleSize {
		return fmt.Errorf("engine.moderate_sample_size must be below engine.large_sample_size")
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	var messages []string
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation '%s'",
			fieldErr.Namespace(),
			fieldErr.Tag(),
		))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}
