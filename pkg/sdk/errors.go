package sdk

import (
	"errors"
	"fmt"
)

// Configuration errors
var (
	ErrInvalidDomain          = errors.New("invalid domain")
	ErrInvalidScheme          = errors.New("invalid scheme")
	ErrInvalidExpirationTime  = errors.New("invalid expiration time")
	ErrInvalidParameterPrefix = errors.New("invalid parameter prefix")
)

// Lifecycle errors
var (
	ErrAlreadyInitialized   = errors.New("sdk is already initialized")
	ErrNotInitialized       = errors.New("sdk is not initialized")
	ErrConfigurationMissing = errors.New("configuration is missing")
)

// Parse errors
var (
	ErrInvalidURL               = errors.New("invalid url")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrInvalidParameterFormat   = errors.New("invalid parameter format")
	ErrLinkExpired              = errors.New("link expired")
)

// ParameterError carries the offending parameter name of a parse failure.
// Kind is ErrMissingRequiredParameter or ErrInvalidParameterFormat.
type ParameterError struct {
	Kind error
	Name string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Name)
}

func (e *ParameterError) Unwrap() error {
	return e.Kind
}

func missingParameter(name string) error {
	return &ParameterError{Kind: ErrMissingRequiredParameter, Name: name}
}

func invalidParameter(name string) error {
	return &ParameterError{Kind: ErrInvalidParameterFormat, Name: name}
}
