// Package errors provides the structured error type shared by every package
// in this module.
//
// An AppError carries a machine-readable code, a human-readable message,
// a retryable flag, free-form details and an optional cause. Process
// operations report launch, wait and kill failures through the codes in
// codes.go; Report renders a whole cause chain for terminal output.
package errors
