package backend

import (
	"errors"
	"fmt"
)

// TranscodingError is a vendor-side failure to start or manage a job. Kind
// names the failure class and ends up in the job metadata as error_type.
type TranscodingError struct {
	Kind string
	Err  error
}

func (e *TranscodingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TranscodingError) Unwrap() error { return e.Err }

// Message is the underlying failure without the kind prefix.
func (e *TranscodingError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// ConfigurationError means the backend cannot work at all until an operator
// fixes its setup.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return fmt.Sprintf("transcoding backend misconfigured: %v", e.Err)
	}
	return fmt.Sprintf("transcoding backend misconfigured: %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func NewTranscodingError(kind string, err error) error {
	return &TranscodingError{Kind: kind, Err: err}
}

func NewConfigurationError(setting string, err error) error {
	return &ConfigurationError{Setting: setting, Err: err}
}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
