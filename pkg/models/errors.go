package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
)

// ConfigurationError reports a matching configuration that cannot be used.
// It is a setup bug, never a per-pair condition.
type ConfigurationError struct {
	Config    string
	Field     string
	Algorithm string
	Message   string
}

func NewConfigurationError(msg string) *ConfigurationError {
	return &ConfigurationError{Message: msg}
}

// NewConfigurationErrorf creates a new ConfigurationError with a formatted message
func NewConfigurationErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	path := []string{}
	if e.Config != "" {
		path = append(path, fmt.Sprintf("config '%s'", e.Config))
	}
	if e.Field != "" {
		path = append(path, fmt.Sprintf("field '%s'", e.Field))
	}
	if e.Algorithm != "" {
		path = append(path, fmt.Sprintf("algorithm '%s'", e.Algorithm))
	}

	if len(path) == 0 {
		return "invalid configuration: " + e.Message
	}

	return "invalid configuration: " + strings.Join(path, " -> ") + ": " + e.Message
}

func (e *ConfigurationError) AddConfig(name string) *ConfigurationError {
	e.Config = name
	return e
}

func (e *ConfigurationError) AddField(field string) *ConfigurationError {
	e.Field = field
	return e
}

func (e *ConfigurationError) AddAlgorithm(alg Algorithm) *ConfigurationError {
	e.Algorithm = alg.String()
	return e
}

func (e *ConfigurationError) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(http.StatusUnprocessableEntity, e.Error()).
		AddMetaValue("config", e.Config).
		AddMetaValue("field", e.Field).
		AddMetaValue("algorithm", e.Algorithm)
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
