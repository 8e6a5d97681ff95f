package registry

import (
	"fmt"

	"ismigrate/pkg/errx"
)

// Sentinel errors for registry transfers and repository provisioning.
var (
	// Transfer errors.
	ErrInvalidReference = fmt.Errorf("invalid image reference")
	ErrCopyImage        = fmt.Errorf("failed to copy image")

	// Provisioning errors.
	ErrRepositoryLookup = fmt.Errorf("repository lookup failed")
	ErrRepositoryCreate = fmt.Errorf("repository creation failed")
)

// wrapTransferError wraps a cause with the transfer category and a sentinel,
// keeping structured context for debug logging.
func wrapTransferError(base error, cause error, msg string, context map[string]any) error {
	err := errx.WrapTransfer(msg, cause).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}

// provisionError creates a new provisioning-category error bound to a
// sentinel.
func provisionError(base error, msg string, context map[string]any) error {
	err := errx.Provision(msg).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}

// wrapProvisionError wraps a cause with the provisioning category and a
// sentinel.
func wrapProvisionError(base error, cause error, msg string, context map[string]any) error {
	err := errx.WrapProvision(msg, cause).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}
