// Package errs defines the error categories the CLI reports. Every error is
// terminal for the invocation; the category only shapes the diagnostic printed
// to stderr. Nothing is ever written to stdout on the error path.
package errs

import "fmt"

// ConfigurationError means required input is missing or contradictory, for
// example an eks run without a cluster name.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// CredentialError means the secret bundle fetched from Vault is unusable or
// the signing inputs are structurally invalid.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return "credential error: " + e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }

// OutputError means the destination sink could not be written.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string { return "output error: " + e.Err.Error() }
func (e *OutputError) Unwrap() error { return e.Err }

// Configuration wraps a formatted message as a ConfigurationError.
func Configuration(format string, args ...any) error {
	return &ConfigurationError{Err: fmt.Errorf(format, args...)}
}

// Credential wraps a formatted message as a CredentialError.
func Credential(format string, args ...any) error {
	return &CredentialError{Err: fmt.Errorf(format, args...)}
}

// Output wraps a formatted message as an OutputError.
func Output(format string, args ...any) error {
	return &OutputError{Err: fmt.Errorf(format, args...)}
}
