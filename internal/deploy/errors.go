package deploy

import (
	"errors"
	"fmt"
)

// ConfigurationError signals missing or invalid deploy inputs. It is always
// returned before any control-plane call is made.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Msg)
}

// ErrConfiguration constructs a ConfigurationError.
func ErrConfiguration(field, msg string) error {
	return &ConfigurationError{Field: field, Msg: msg}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// Step names one provisioning call.
type Step string

const (
	StepModel          Step = "create_model"
	StepEndpointConfig Step = "create_endpoint_config"
	StepEndpoint       Step = "create_endpoint"
)

// ProvisionError reports the step and resource whose creation failed. It
// aborts the deploy; later steps are not attempted.
type ProvisionError struct {
	Step     Step
	Resource string
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Step, e.Resource, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// IsProvision reports whether err is a ProvisionError.
func IsProvision(err error) bool {
	var pe *ProvisionError
	return errors.As(err, &pe)
}
