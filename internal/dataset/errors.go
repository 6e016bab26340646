package dataset

import (
	"errors"
	"fmt"
)

// Error kinds shared by the tabular packages. Callers match them with
// errors.Is; concrete errors wrap one of these with context.
var (
	// ErrDataShape reports an input whose shape cannot become a Dataset, or
	// an operation that needs structure the Dataset does not have.
	ErrDataShape = errors.New("data shape error")

	// ErrDimension reports a row or column width mismatch.
	ErrDimension = errors.New("dimension error")

	// ErrValidation reports an invalid argument, such as a nil transform.
	ErrValidation = errors.New("validation error")
)

var (
	// ErrNoHeaders is returned when a column is addressed by name on a
	// Dataset without headers.
	ErrNoHeaders = fmt.Errorf("%w: dataset has no headers", ErrDataShape)

	// ErrColumnNotFound is returned when a column reference does not resolve.
	ErrColumnNotFound = fmt.Errorf("%w: column not found", ErrDataShape)
)
