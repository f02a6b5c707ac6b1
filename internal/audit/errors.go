package audit

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/healthaudit/internal/dataset"
)

// MissingColumnError indicates a required column is absent.
type MissingColumnError = dataset.MissingColumnError

// ErrNegativeCount is returned when a sample size below zero is requested.
var ErrNegativeCount = errors.New("sample count must not be negative")

// InsufficientRowsError indicates sampling asked for more rows than the table holds.
type InsufficientRowsError struct {
	Requested int
	Available int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("cannot sample count=%d rows: only %d available", e.Requested, e.Available)
}

// OverflowError indicates a column statistic left the float64 range although
// every value is finite. Stat is "mean" or "range".
type OverflowError struct {
	Column string
	Stat   string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("column %q: %s overflows float64", e.Column, e.Stat)
}

// DegenerateRangeError indicates a column to normalize holds a single distinct value.
type DegenerateRangeError struct {
	Column string
	Value  float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("cannot normalize %q: every row equals %g (max == min)", e.Column, e.Value)
}

// NonNumericError indicates a numeric column holds a text or non-finite value.
type NonNumericError struct {
	Column string
	Row    int // 0-based; -1 for standalone records
	Value  string
}

func (e *NonNumericError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("column %q: value %q is not a finite number", e.Column, e.Value)
	}
	return fmt.Sprintf("column %q row %d: value %q is not a finite number", e.Column, e.Row+1, e.Value)
}

// NoObservationsError indicates a column has no values to compute a mean from.
type NoObservationsError struct {
	Column string
}

func (e *NoObservationsError) Error() string {
	return fmt.Sprintf("column %q has no observed values to impute from", e.Column)
}
