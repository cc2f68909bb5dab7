package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		appErr, ok := AsAppError(err)
		if !ok {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// --- Process error constructors ---

// InvalidSpec creates an AppError for a command spec that failed validation.
func InvalidSpec(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidSpec, Message: fmt.Sprintf("Invalid command spec: %s", reason),
		Retryable: false,
	}
}

// SpawnFailed creates an AppError for a process the OS could not create.
func SpawnFailed(binary string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSpawnFailed, Message: fmt.Sprintf("Failed to start %s.", binary),
		Retryable: true, Cause: cause,
		Details: map[string]any{"binary": binary, "reason": causeText(cause)},
	}
}

// WaitFailed creates an AppError for a failed wait on a child process.
func WaitFailed(pid int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeWaitFailed, Message: fmt.Sprintf("Waiting on process %d failed.", pid),
		Retryable: false, Cause: cause,
		Details: map[string]any{"pid": pid},
	}
}

// AlreadyTerminated creates an AppError for signalling a child that has exited.
func AlreadyTerminated(pid int) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyTerminated, Message: fmt.Sprintf("Process %d has already terminated.", pid),
		Retryable: false,
		Details:   map[string]any{"pid": pid},
	}
}

// PermissionDenied creates an AppError for a signal the OS refused to deliver.
func PermissionDenied(pid int, cause error) *AppError {
	return &AppError{
		Code: ErrCodePermissionDenied, Message: fmt.Sprintf("Not permitted to signal process %d.", pid),
		Retryable: false, Cause: cause,
		Details: map[string]any{"pid": pid},
	}
}

// Unsupported creates an AppError for an operation the platform cannot perform.
func Unsupported(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeUnsupported, Message: fmt.Sprintf("%s is not supported on this platform.", operation),
		Retryable: false, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}

// CommandFailed creates an AppError for a command that exited unsuccessfully.
// Non-empty output is appended to the message in STDOUT/STDERR sections.
func CommandFailed(argv []string, exitCode int, stdout, stderr string) *AppError {
	var b strings.Builder
	fmt.Fprintf(&b, "Command Failed (ec=%d): %q", exitCode, argv)
	if stdout != "" {
		fmt.Fprintf(&b, "\n\n----- STDOUT\n%s", stdout)
	}
	if stderr != "" {
		fmt.Fprintf(&b, "\n\n----- STDERR\n%s", stderr)
	}
	return &AppError{
		Code: ErrCodeCommandFailed, Message: b.String(),
		Retryable: false,
		Details:   map[string]any{"argv": argv, "exit_code": exitCode},
	}
}

// StillAlive creates an AppError for a pidfile whose owner is still running.
func StillAlive(pid int) *AppError {
	return &AppError{
		Code: ErrCodeStillAlive, Message: fmt.Sprintf("A previous instance (pid %d) is still alive.", pid),
		Retryable: false,
		Details:   map[string]any{"pid": pid},
	}
}

// --- Generic constructors ---

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		Retryable: false,
	}
}

// Timeout creates a new AppError for an operation that ran out of time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s did not finish in time.", operation),
		Retryable: true,
		Details:   map[string]any{"operation": operation},
	}
}

// ServiceUnavailable creates a new AppError for a dependency that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		Retryable: true,
		Details:   map[string]any{"service": service},
	}
}

// ExternalServiceError creates a new AppError for a failure reported by an external program.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error.", service),
		Retryable: true, Cause: cause,
		Details: map[string]any{"service": service},
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
