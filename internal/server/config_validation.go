// config_validation.go - Startup validation of the server configuration.
//
// All problems are collected and reported together so a bad deployment
// fails fast with one readable message.
package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// ConfigValidationError represents a configuration validation error.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator accumulates validation errors.
type ConfigValidator struct {
	errors []ConfigValidationError
}

// NewConfigValidator creates a new configuration validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		errors: make([]ConfigValidationError, 0),
	}
}

// AddError adds a validation error.
func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ConfigValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *ConfigValidator) Errors() []ConfigValidationError {
	return v.errors
}

// ErrorString returns a formatted string of all errors.
func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidateRequired records an error when value is blank.
func (v *ConfigValidator) ValidateRequired(key, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(key, "required value not set")
	}
}

// ValidateAddr checks a listen address of the form "host:port" or ":port".
func (v *ConfigValidator) ValidateAddr(key, value string) {
	if value == "" {
		return
	}

	idx := strings.LastIndex(value, ":")
	if idx < 0 {
		v.AddError(key, "must be host:port or :port")
		return
	}

	port, err := strconv.Atoi(value[idx+1:])
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 0 || port > 65535 {
		v.AddError(key, "port must be between 0 and 65535")
	}
}

// ValidateEnum validates that a value is one of allowed options.
func (v *ConfigValidator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// ValidateNonNegative rejects negative limits. Zero means unlimited.
func (v *ConfigValidator) ValidateNonNegative(key string, value int64) {
	if value < 0 {
		v.AddError(key, "must not be negative (0 disables the limit)")
	}
}

// ValidateCronSpec checks a standard cron expression. Empty is allowed.
func (v *ConfigValidator) ValidateCronSpec(key, value string) {
	if value == "" {
		return
	}
	if _, err := cron.ParseStandard(value); err != nil {
		v.AddError(key, fmt.Sprintf("invalid cron spec: %v", err))
	}
}

// Validate checks the configuration as a whole.
func (c Config) Validate() error {
	v := NewConfigValidator()

	v.ValidateRequired("addr", c.Addr)
	v.ValidateAddr("addr", c.Addr)
	v.ValidateRequired("upload_dir", c.UploadDir)

	v.ValidateNonNegative("max_upload_size", c.MaxUploadSize)
	v.ValidateNonNegative("max_post_size", c.MaxPostSize)
	v.ValidateNonNegative("max_file_uploads", int64(c.MaxFileUploads))
	v.ValidateNonNegative("cleanup_max_age", int64(c.CleanupMaxAge))

	// A post limit below the file limit makes the file limit unreachable.
	if c.MaxPostSize > 0 && c.MaxUploadSize > 0 && c.MaxPostSize < c.MaxUploadSize {
		v.AddError("max_post_size", "must be at least max_upload_size")
	}

	v.ValidateCronSpec("cleanup_schedule", c.CleanupSchedule)

	v.ValidateEnum("log.format", c.Log.Format, []string{"json", "text"})
	v.ValidateEnum("log.level", c.Log.Level, []string{"debug", "info", "warn", "error"})
	v.ValidateEnum("env", c.Env, []string{"development", "production", "staging"})

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}

	return nil
}
