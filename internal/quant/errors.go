package quant

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across the analytics packages.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrModelFit         = errors.New("model fit failed")
)

// InsufficientDataError reports a series (or a filtered scale/box/window set)
// that is too small for the requested estimator.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: need %d, got %d", e.Op, e.Need, e.Got)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// NewInsufficientData builds an InsufficientDataError for op.
func NewInsufficientData(op string, need, got int) error {
	return &InsufficientDataError{Op: op, Need: need, Got: got}
}

// InvalidParameterError reports an out-of-range caller parameter.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// NewInvalidParameter builds an InvalidParameterError.
func NewInvalidParameter(param, reason string) error {
	return &InvalidParameterError{Param: param, Reason: reason}
}

// ModelFitError reports a fitting routine that failed to converge after its
// configured fallback was also attempted. Err carries the underlying cause.
type ModelFitError struct {
	Model string
	Err   error
}

func (e *ModelFitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: fit failed: %v", e.Model, e.Err)
	}
	return fmt.Sprintf("%s: fit failed", e.Model)
}

func (e *ModelFitError) Unwrap() error { return e.Err }

func (e *ModelFitError) Is(target error) bool {
	return target == ErrModelFit
}
