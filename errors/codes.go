package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Launch errors
const (
	// ErrCodeInvalidSpec indicates a command spec failed validation; no process was created.
	ErrCodeInvalidSpec ErrorCode = "INVALID_SPEC"
	// ErrCodeSpawnFailed indicates the OS refused to create the process.
	ErrCodeSpawnFailed ErrorCode = "SPAWN_FAILED"
)

// Wait errors
const (
	// ErrCodeWaitFailed indicates waiting on a child or draining its output failed.
	ErrCodeWaitFailed ErrorCode = "WAIT_FAILED"
)

// Kill errors
const (
	// ErrCodeAlreadyTerminated indicates the child had already exited.
	ErrCodeAlreadyTerminated ErrorCode = "ALREADY_TERMINATED"
	// ErrCodePermissionDenied indicates the caller may not signal the child.
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	// ErrCodeUnsupported indicates the platform cannot perform the operation.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Command outcome errors
const (
	// ErrCodeCommandFailed indicates a command ran but exited unsuccessfully.
	ErrCodeCommandFailed ErrorCode = "COMMAND_FAILED"
	// ErrCodeStillAlive indicates a previous instance recorded in a pidfile is alive.
	ErrCodeStillAlive ErrorCode = "STILL_ALIVE"
)

// Generic errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTimeout indicates the operation did not finish in time.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeExternalService indicates an error from an external program or service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSpawnFailed:        true,
	ErrCodeTimeout:            true,
	ErrCodeServiceUnavailable: true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
