package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "cache.ttl").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)
	errs = append(errs, validateMaintenance(&cfg.Maintenance)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateCache validates cache configuration.
func validateCache(c *CacheConfig) []FieldError {
	var errs []FieldError

	if c.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.ttl",
			Message: "must not be negative",
		})
	}
	if c.MaxSize != nil && *c.MaxSize < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.max_size",
			Message: "must not be negative (0 disables caching)",
		})
	}

	return errs
}

// validateRateLimit validates rate limit configuration.
func validateRateLimit(c *RateLimitConfig) []FieldError {
	var errs []FieldError

	if c.Enabled != nil && !*c.Enabled {
		return nil
	}

	if c.MaxRequests < 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.max_requests",
			Message: "must not be negative",
		})
	}
	if c.Interval < 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.interval",
			Message: "must not be negative",
		})
	}
	if c.MaxQueueSize != nil && *c.MaxQueueSize < 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.max_queue_size",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateMaintenance validates maintenance configuration.
func validateMaintenance(c *MaintenanceConfig) []FieldError {
	var errs []FieldError

	if c.PruneSchedule != "" {
		if _, err := cron.ParseStandard(c.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "maintenance.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}
