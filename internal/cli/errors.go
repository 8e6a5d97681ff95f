package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors for different error categories (CLI, Config, Transfer, etc.)
//   - Error wrapping functions that integrate with the errx error system
//   - Structured error logging with context
//   - Debug mode management for error output

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"ismigrate/pkg/errx"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError will output structured error logs to terminal.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

type errorSpec struct {
	code        string
	description string
}

// newSentinelError creates a sentinel error and registers it in errorSpecs in one step.
// This eliminates redundancy between error definitions and errorSpecs mapping.
func newSentinelError(msg string, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

// errorSpecs maps sentinel errors to their error codes and descriptions.
// Populated automatically by newSentinelError() during variable initialization.
// Must be declared before sentinel errors to ensure proper initialization order.
var errorSpecs = make(map[error]errorSpec)

// lookupSpec provides a lookup function for errx.FromSentinel.
func lookupSpec(sentinel error) (code, description string) {
	spec := specFor(sentinel)
	return spec.code, spec.description
}

// newWithSentinel creates a new error using the appropriate errx category helper.
// The base error (sentinel) is used to determine the category, and the message provides context.
func newWithSentinel(base error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, nil)
	}
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

// wrapWithSentinel wraps a cause error using the appropriate errx category helper.
// The base error (sentinel) is used to determine the category, and the message provides context.
func wrapWithSentinel(base, cause error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, cause)
	}
	return errx.FromSentinel(base, lookupSpec, msg, cause)
}

// wrapWithSentinelAndContext wraps an error with additional structured context.
// This is useful for adding debugging information like namespace, image names, etc.
func wrapWithSentinelAndContext(base, cause error, msg string, context map[string]any) error {
	err := wrapWithSentinel(base, cause, msg)
	if errxErr, ok := err.(*errx.Error); ok && len(context) > 0 {
		return errxErr.WithContextMap(context)
	}
	return err
}

// Sentinel errors for CLI operations.
// Errors are defined and registered in one step using newSentinelError to eliminate redundancy.
var (
	// CLI errors.
	ErrUnknownTransferMode = newSentinelError("unknown transfer mode", errx.CodeCLI, errx.DescCLI)

	// Config errors.
	ErrNamespacesRequired          = newSentinelError("at least one namespace is required", errx.CodeConfig, errx.DescConfig)
	ErrSourceRegistryRequired      = newSentinelError("source registry host is required", errx.CodeConfig, errx.DescConfig)
	ErrDestinationRegistryRequired = newSentinelError("destination registry host is required", errx.CodeConfig, errx.DescConfig)
	ErrDestinationGroupRequired    = newSentinelError("destination group is required", errx.CodeConfig, errx.DescConfig)
	ErrRepositoryAPIRequired       = newSentinelError("repository API url is required", errx.CodeConfig, errx.DescConfig)

	// Transfer errors (docker mode).
	ErrDockerLoginFailed = newSentinelError("failed to login to registry", errx.CodeTransfer, errx.DescTransfer)
	ErrPullImageFailed   = newSentinelError("failed to pull image", errx.CodeTransfer, errx.DescTransfer)
	ErrTagImageFailed    = newSentinelError("failed to tag image", errx.CodeTransfer, errx.DescTransfer)
	ErrPushImageFailed   = newSentinelError("failed to push image", errx.CodeTransfer, errx.DescTransfer)
	ErrRemoveImageFailed = newSentinelError("failed to remove local image", errx.CodeTransfer, errx.DescTransfer)
)

func specFor(base error) errorSpec {
	spec, ok := errorSpecs[base]
	if ok {
		return spec
	}
	return errorSpec{code: errx.CodeCLI, description: errx.DescCLI}
}

// TODO: Consider moving this to pkg/errx as a generic logging utility for errx.Error.

// logStructuredError logs an error with structured fields to terminal.
// Only logs when debug mode is enabled (via --debug flag).
// The zap logger is configured with console encoding, so structured fields
// are displayed in a human-readable format in the terminal.
//
// This extracts all context from errx.Error and logs it with structured fields:
// - error.code: "72000"
// - error.category: "Image transfer error"
// - error.context.namespace: "team-a"
// - error.context.image: "registry.example.com/team-a/app:v2"
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}

	var errxErr *errx.Error
	if errors.As(err, &errxErr) {
		fields := []zap.Field{
			zap.String("error.code", errxErr.Code()),
			zap.String("error.category", errxErr.Description()),
			zap.String("error.message", errxErr.Message()),
			zap.Error(err),
		}

		// Add all context fields as individual zap fields for structured output
		if ctx := errxErr.Context(); ctx != nil {
			for key, value := range ctx {
				fields = append(fields, zap.Any("error.context."+key, value))
			}
		}

		// Add cause if present (use distinct field name to avoid duplicate "error" field)
		if cause := errxErr.Cause(); cause != nil {
			fields = append(fields, zap.NamedError("error.cause", cause))
		}

		logger.Error(msg, fields...)
	} else {
		// Fallback for non-errx errors
		logger.Error(msg, zap.Error(err))
	}
}
