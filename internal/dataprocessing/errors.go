package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult is returned when the filtered dataset has no rows.
// It is an informational outcome, not a failure.
var ErrEmptyResult = errors.New("no rows match the requested filter")

// LoadError reports a workbook that cannot be turned into a Dataset
type LoadError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load workbook: %s: %v", e.Reason, e.Err)
	}
	return "load workbook: " + e.Reason
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *LoadError) Unwrap() error {
	return e.Err
}

// MissingColumnsError lists required columns absent from the header row,
// together with the columns that were found.
type MissingColumnsError struct {
	Missing []string
	Found   []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

func newLoadError(reason string, err error) *LoadError {
	return &LoadError{Reason: reason, Err: err}
}
