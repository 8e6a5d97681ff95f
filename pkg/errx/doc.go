// Package errx provides structured, code-based errors for the migration CLI.
//
// The package implements a code-based error system where each error has:
//   - A stable 5-digit error code (e.g., "72000" for transfer errors)
//   - A category description (e.g., "Image transfer error")
//   - A user-facing message
//   - Optional structured context (key-value pairs)
//   - Optional cause and base sentinel errors
//
// Error codes follow a scheme where the first two digits represent the domain:
//   - 70xxx: CLI/argument validation errors
//   - 71xxx: Cluster/inventory errors
//   - 72xxx: Image transfer errors
//   - 73xxx: Repository provisioning errors
//   - 74xxx: Migration pipeline errors
//   - 75xxx: Cluster authentication errors
//   - 76xxx: Audit sink errors
//   - 79xxx: Configuration errors
//
// The last three digits are reserved for subcodes (future use).
//
// Example usage:
//
//	err := errx.Transfer("failed to copy image").
//		WithContext("src", "registry.example.com/ns/app:v1").
//		WithBase(sentinelErr)
//
//	if errors.Is(err, sentinelErr) {
//		// Handle specific error
//	}
//
//	fmt.Println(errx.UserString(err))  // User-friendly message
//	fmt.Println(errx.DebugString(err)) // Full debug details
package errx
