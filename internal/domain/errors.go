package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrUnknownTask     = errors.New("unknown task")
	ErrUnknownRouter   = errors.New("unknown router")
	ErrValidation      = errors.New("validation failed")
	ErrUpstreamParse   = errors.New("unusable upstream output")
	ErrUpstream        = errors.New("upstream failure")
	ErrTemplate        = errors.New("template error")

	// ErrIndexDisabled is returned by similarity lookups when no embedding index is configured.
	ErrIndexDisabled = errors.New("embedding index is disabled")
)

type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("Unknown provider: %s", e.Provider)
}

func (e *UnknownProviderError) Unwrap() error { return ErrUnknownProvider }

type UnknownTaskError struct {
	Provider Provider
	Name     string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("Unknown task type for provider %s: %s", e.Provider, e.Name)
}

func (e *UnknownTaskError) Unwrap() error { return ErrUnknownTask }

type UnknownRouterError struct {
	Provider Provider
	Name     string
}

func (e *UnknownRouterError) Error() string {
	return fmt.Sprintf("Unknown router type for provider %s: %s", e.Provider, e.Name)
}

func (e *UnknownRouterError) Unwrap() error { return ErrUnknownRouter }

// ValidationError carries the first schema violation found in a request body.
type ValidationError struct {
	Descriptor string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Descriptor, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// UpstreamParseError means the model answered but the answer is not a usable structured result.
type UpstreamParseError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *UpstreamParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s returned unusable output: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s returned unusable output: %s", e.Backend, e.Reason)
}

func (e *UpstreamParseError) Is(target error) bool { return target == ErrUpstreamParse }

func (e *UpstreamParseError) Unwrap() error { return e.Err }

// UpstreamError wraps a transport or provider failure of the model backend.
type UpstreamError struct {
	Backend string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

type TemplateError struct {
	Template string
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }

func (e *TemplateError) Unwrap() error { return e.Err }

// IsClientError reports whether err was caused by the caller's routing key or payload.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownProvider) ||
		errors.Is(err, ErrUnknownTask) ||
		errors.Is(err, ErrUnknownRouter) ||
		errors.Is(err, ErrValidation)
}
