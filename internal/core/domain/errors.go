package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownProvider  = errors.New("unknown rate provider")
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrUnknownContract  = errors.New("unknown contract")
)

// FetchErrorKind classifies why a provider could not produce a rate.
type FetchErrorKind string

const (
	KindNetwork      FetchErrorKind = "network"
	KindStatus       FetchErrorKind = "status"
	KindDecode       FetchErrorKind = "decode"
	KindMissingField FetchErrorKind = "missing_field"
	KindNotNumeric   FetchErrorKind = "not_numeric"
	KindInvalidValue FetchErrorKind = "invalid_value"
)

// FetchError is returned by every RateProvider on failure.
type FetchError struct {
	Provider string
	Kind     FetchErrorKind
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError builds a FetchError with a formatted cause.
func NewFetchError(provider string, kind FetchErrorKind, format string, args ...interface{}) *FetchError {
	return &FetchError{Provider: provider, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// FetchErrorKindOf returns the kind of err if it wraps a *FetchError.
func FetchErrorKindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
