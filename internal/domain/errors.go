package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the portal.
// Remote-call faults fall into four kinds: missing configuration,
// token exchange failure, transport/HTTP failure and response parse
// failure. All of them are caught at the client boundary and turned
// into sentinel outcomes; none reach the conversation as a fault.

// ErrConfigMissing indicates a required credential or endpoint is not
// configured. This degrades the affected client, it never aborts the
// process.
type ErrConfigMissing struct {
	Service string
	Fields  []string
}

func (e *ErrConfigMissing) Error() string {
	return fmt.Sprintf("%s not configured: missing %s", e.Service, strings.Join(e.Fields, ", "))
}

// ErrAuthFailure indicates the IAM token exchange failed.
type ErrAuthFailure struct {
	Err error
}

func (e *ErrAuthFailure) Error() string {
	return fmt.Sprintf("IAM token exchange failed: %v", e.Err)
}

func (e *ErrAuthFailure) Unwrap() error {
	return e.Err
}

// ErrRemoteStatus indicates a remote service answered with a non-2xx
// status. Body carries the raw response text for diagnostics.
type ErrRemoteStatus struct {
	Service string
	Status  int
	Body    string
}

func (e *ErrRemoteStatus) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
}

// ErrExternalService indicates a transport or parse failure calling an
// external service.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
