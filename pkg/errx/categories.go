package errx

// CreateByCode creates an Error using the provided code, description, and message.
// This is a convenience function that directly calls New() or Wrap().
func CreateByCode(code, description, message string, cause error) *Error {
	if cause != nil {
		return Wrap(code, description, message, cause)
	}
	return New(code, description, message)
}

// FromSentinel creates an Error from a sentinel error and optional message/cause.
// This is useful when you have a sentinel error and want to create an errx.Error
// with the same category. The sentinel is used to determine the category via a lookup function.
func FromSentinel(sentinel error, lookup func(error) (code, description string), message string, cause error) *Error {
	code, desc := lookup(sentinel)
	if code == "" {
		code = CodeCLI
		desc = DescCLI
	}
	return CreateByCode(code, desc, message, cause).WithBase(sentinel)
}

// CLI creates a CLI/argument validation error with code 70000.
// Use this for errors related to command-line argument validation,
// invalid user input, or CLI-specific issues.
// This is heavily used in internal/cli/errors.go for CLI sentinel errors.
func CLI(message string) *Error {
	return New(CodeCLI, DescCLI, message)
}

// WrapCLI wraps a cause with a CLI/argument validation error.
// Use this when a CLI error is caused by another error that should be preserved.
func WrapCLI(message string, cause error) *Error {
	return Wrap(CodeCLI, DescCLI, message, cause)
}

// Cluster creates a cluster/inventory error.
func Cluster(message string) *Error {
	return New(CodeCluster, DescCluster, message)
}

// WrapCluster wraps a cause with a cluster/inventory error.
func WrapCluster(message string, cause error) *Error {
	return Wrap(CodeCluster, DescCluster, message, cause)
}

// Auth creates a cluster authentication error.
func Auth(message string) *Error {
	return New(CodeAuth, DescAuth, message)
}

// WrapAuth wraps a cause with a cluster authentication error.
func WrapAuth(message string, cause error) *Error {
	return Wrap(CodeAuth, DescAuth, message, cause)
}

// Transfer creates an image transfer error.
func Transfer(message string) *Error {
	return New(CodeTransfer, DescTransfer, message)
}

// WrapTransfer wraps a cause with an image transfer error.
func WrapTransfer(message string, cause error) *Error {
	return Wrap(CodeTransfer, DescTransfer, message, cause)
}

// Provision creates a repository provisioning error.
func Provision(message string) *Error {
	return New(CodeProvision, DescProvision, message)
}

// WrapProvision wraps a cause with a repository provisioning error.
func WrapProvision(message string, cause error) *Error {
	return Wrap(CodeProvision, DescProvision, message, cause)
}

// Pipeline creates a migration pipeline error. Work-list and outcome-log
// failures fall into this category.
func Pipeline(message string) *Error {
	return New(CodePipeline, DescPipeline, message)
}

// WrapPipeline wraps a cause with a migration pipeline error.
func WrapPipeline(message string, cause error) *Error {
	return Wrap(CodePipeline, DescPipeline, message, cause)
}

// Config creates a configuration error.
func Config(message string) *Error {
	return New(CodeConfig, DescConfig, message)
}

// WrapConfig wraps a cause with a configuration error.
func WrapConfig(message string, cause error) *Error {
	return Wrap(CodeConfig, DescConfig, message, cause)
}

// Audit creates an audit sink error.
func Audit(message string) *Error {
	return New(CodeAudit, DescAudit, message)
}

// WrapAudit wraps a cause with an audit sink error.
func WrapAudit(message string, cause error) *Error {
	return Wrap(CodeAudit, DescAudit, message, cause)
}
