package process

import (
	apperrors "github.com/bbugyi200/bugyi/errors"
)

// IsInvalidSpec reports whether err rejected a Spec before any OS process
// was created.
func IsInvalidSpec(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeInvalidSpec)
}

// IsSpawnFailed reports whether the OS refused to start the process.
func IsSpawnFailed(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeSpawnFailed)
}

// IsWaitFailed reports whether waiting on a child failed.
func IsWaitFailed(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeWaitFailed)
}

// IsAlreadyTerminated reports whether a signal targeted a child that had
// already exited.
func IsAlreadyTerminated(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeAlreadyTerminated)
}

// IsPermissionDenied reports whether the OS refused to deliver a signal.
func IsPermissionDenied(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodePermissionDenied)
}

// IsUnsupported reports whether the platform cannot perform the operation.
func IsUnsupported(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeUnsupported)
}

// IsCommandFailed reports whether a command ran but exited unsuccessfully.
func IsCommandFailed(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeCommandFailed)
}

// IsTimeout reports whether a command was stopped because its context ended.
func IsTimeout(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrCodeTimeout)
}
