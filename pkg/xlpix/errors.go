package xlpix

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates the caller-supplied options are structurally
// invalid (bad column indices, unknown strategy, missing sheet name).
var ErrInvalidConfig = errors.New("invalid extraction options")

// ErrUnknownStrategy indicates an unrecognized label resolution strategy
// selector.
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// ExtractionError represents a structural failure during extraction.
// Resolution gaps and packaging gaps are never wrapped in one of these;
// those travel as report warnings.
type ExtractionError struct {
	Sheet     string
	Component string // "workbook", "images", "layout", "archive"
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error in sheet %q (%s): %v", e.Sheet, e.Component, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates a new ExtractionError.
func NewExtractionError(sheet, component string, err error) *ExtractionError {
	return &ExtractionError{
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
