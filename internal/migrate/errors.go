package migrate

import (
	"fmt"

	"ismigrate/pkg/errx"
)

// Sentinel errors for migration pipeline operations.
var (
	// Tag selection errors.
	ErrInvalidTagMode = fmt.Errorf("invalid tag mode")

	// Work list errors.
	ErrResetWorklist    = fmt.Errorf("failed to reset work list")
	ErrAppendWorklist   = fmt.Errorf("failed to append to work list")
	ErrReadWorklist     = fmt.Errorf("failed to read work list")
	ErrMalformedPair    = fmt.Errorf("malformed work list entry")
	ErrWorklistNotFound = fmt.Errorf("work list not found")

	// Outcome log errors.
	ErrAppendLog = fmt.Errorf("failed to append to outcome log")
	ErrReadLog   = fmt.Errorf("failed to read outcome log")
)

// pipelineError creates a new pipeline-category error bound to a sentinel.
func pipelineError(base error, msg string, context map[string]any) error {
	err := errx.Pipeline(msg).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}

// wrapPipelineError wraps a cause with the pipeline category and a sentinel,
// keeping structured context for debug logging.
func wrapPipelineError(base error, cause error, msg string, context map[string]any) error {
	err := errx.WrapPipeline(msg, cause).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}
