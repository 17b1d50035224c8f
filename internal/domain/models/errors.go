package models

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyHistory        = errors.New("empty price history")
	ErrInsufficientHistory = errors.New("insufficient price history")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrProvider            = errors.New("price provider failure")
)

// EmptyHistoryError is returned when a provider has no observations for a symbol.
type EmptyHistoryError struct {
	Symbol string
}

func (e *EmptyHistoryError) Error() string {
	return fmt.Sprintf("%s: no observations for %q", ErrEmptyHistory, e.Symbol)
}

func (e *EmptyHistoryError) Is(target error) bool { return target == ErrEmptyHistory }

// InsufficientHistoryError is returned when a series is shorter than the model window.
type InsufficientHistoryError struct {
	Have int
	Need int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: have %d observations, need %d", ErrInsufficientHistory, e.Have, e.Need)
}

func (e *InsufficientHistoryError) Is(target error) bool { return target == ErrInsufficientHistory }

// DimensionMismatchError reports a shape that differs from the fitted or trained one.
type DimensionMismatchError struct {
	What     string
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expected %d, got %d", ErrDimensionMismatch, e.What, e.Expected, e.Got)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// ProviderError wraps a transport or API failure from a price provider.
// It is not part of the no-prediction taxonomy.
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrProvider, e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// NoPredictionReason maps a recoverable pipeline error to the reason reported to callers.
// ok is false for errors that are not part of the recoverable taxonomy.
func NoPredictionReason(err error) (reason string, ok bool) {
	switch {
	case errors.Is(err, ErrEmptyHistory):
		return ReasonEmptyHistory, true
	case errors.Is(err, ErrInsufficientHistory):
		return ReasonInsufficientHistory, true
	case errors.Is(err, ErrDimensionMismatch):
		return ReasonDimensionMismatch, true
	default:
		return "", false
	}
}
