package cluster

import (
	"fmt"

	"ismigrate/pkg/errx"
)

// Sentinel errors for cluster access. Authentication failures are fatal to
// the run; inventory failures are reported per namespace.
var (
	// Authentication errors.
	ErrOAuthDiscovery = fmt.Errorf("failed to discover OAuth server")
	ErrTokenRequest   = fmt.Errorf("token request failed")
	ErrNoAccessToken  = fmt.Errorf("no access token in OAuth response")

	// Inventory errors.
	ErrListImageStreams = fmt.Errorf("failed to list image streams")
)

// wrapAuthError wraps a cause with the authentication category and a
// sentinel, keeping structured context for debug logging.
func wrapAuthError(base error, cause error, msg string, context map[string]any) error {
	err := errx.WrapAuth(msg, cause).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}

// authError creates a new authentication-category error bound to a sentinel.
func authError(base error, msg string, context map[string]any) error {
	err := errx.Auth(msg).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}

// wrapClusterError wraps a cause with the cluster/inventory category and a
// sentinel.
func wrapClusterError(base error, cause error, msg string, context map[string]any) error {
	err := errx.WrapCluster(msg, cause).WithBase(base)
	if len(context) > 0 {
		err = err.WithContextMap(context)
	}
	return err
}
