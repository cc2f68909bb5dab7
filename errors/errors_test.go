package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeInvalidSpec, "bad spec")
	if err.Code != ErrCodeInvalidSpec {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidSpec, err.Code)
	}
	if err.Message != "bad spec" {
		t.Errorf("expected message 'bad spec', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("INVALID_SPEC should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeSpawnFailed, "fork failed")
	if !err.Retryable {
		t.Error("SPAWN_FAILED should be retryable")
	}
}

func TestAppError_SpawnFailed_Details(t *testing.T) {
	cause := fmt.Errorf("exec: no such file")
	err := SpawnFailed("/nonexistent/binary-xyz", cause)
	if err.Details["binary"] != "/nonexistent/binary-xyz" {
		t.Errorf("expected binary detail, got %v", err.Details["binary"])
	}
	if err.Details["reason"] != "exec: no such file" {
		t.Errorf("expected reason detail, got %v", err.Details["reason"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("SpawnFailed should wrap its cause")
	}
}

func TestAppError_CommandFailed_Message(t *testing.T) {
	err := CommandFailed([]string{"sh", "-c", "exit 3"}, 3, "out", "err")
	for _, want := range []string{"Command Failed (ec=3)", "----- STDOUT\nout", "----- STDERR\nerr"} {
		if !strings.Contains(err.Message, want) {
			t.Errorf("message %q should contain %q", err.Message, want)
		}
	}

	quiet := CommandFailed([]string{"false"}, 1, "", "")
	if strings.Contains(quiet.Message, "-----") {
		t.Errorf("empty output should not produce sections: %q", quiet.Message)
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := AlreadyTerminated(12).WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := AlreadyTerminated(7).WithDetails(map[string]any{"extra": "info"})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["pid"] != 7 {
		t.Error("expected original details to be preserved")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"InvalidSpec", InvalidSpec("binary is required"), ErrCodeInvalidSpec, false},
		{"SpawnFailed", SpawnFailed("x", nil), ErrCodeSpawnFailed, true},
		{"WaitFailed", WaitFailed(1, nil), ErrCodeWaitFailed, false},
		{"AlreadyTerminated", AlreadyTerminated(1), ErrCodeAlreadyTerminated, false},
		{"PermissionDenied", PermissionDenied(1, nil), ErrCodePermissionDenied, false},
		{"Unsupported", Unsupported("kill", nil), ErrCodeUnsupported, false},
		{"CommandFailed", CommandFailed(nil, 1, "", ""), ErrCodeCommandFailed, false},
		{"StillAlive", StillAlive(1), ErrCodeStillAlive, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, false},
		{"Timeout", Timeout("run"), ErrCodeTimeout, true},
		{"ServiceUnavailable", ServiceUnavailable("runner"), ErrCodeServiceUnavailable, true},
		{"ExternalServiceError", ExternalServiceError("git", nil), ErrCodeExternalService, true},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestHasCode_WalksChain(t *testing.T) {
	inner := SpawnFailed("x", stderrors.New("enoent"))
	outer := ExternalServiceError("runner", inner)
	wrapped := fmt.Errorf("context: %w", outer)

	if !HasCode(wrapped, ErrCodeExternalService) {
		t.Error("expected outer code to be found")
	}
	if !HasCode(wrapped, ErrCodeSpawnFailed) {
		t.Error("expected inner code to be found through the cause chain")
	}
	if HasCode(wrapped, ErrCodeWaitFailed) {
		t.Error("unexpected code match")
	}
	if HasCode(stderrors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := AlreadyTerminated(5)
	wrapped := fmt.Errorf("wrap: %w", appErr)
	got, ok := AsAppError(wrapped)
	if !ok || got != appErr {
		t.Fatal("expected AsAppError to find wrapped AppError")
	}
	if _, ok := AsAppError(stderrors.New("plain")); ok {
		t.Error("expected plain error to not be an AppError")
	}
	if !IsAppError(wrapped) {
		t.Error("IsAppError should see through wrapping")
	}
	if IsRetryable(wrapped) {
		t.Error("ALREADY_TERMINATED is not retryable")
	}
}

func TestReport_OrdersRootCauseFirst(t *testing.T) {
	root := stderrors.New("no such file or directory")
	err := SpawnFailed("/nonexistent/binary-xyz", root)

	out := Report(err, 60)
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if len(line) != 60 {
			t.Errorf("line %d has width %d, want 60: %q", i, len(line), line)
		}
	}
	rootAt := strings.Index(out, "no such file")
	bannerAt := strings.Index(out, causeBanner)
	codeAt := strings.Index(out, string(ErrCodeSpawnFailed))
	if rootAt < 0 || bannerAt < 0 || codeAt < 0 {
		t.Fatalf("report is missing sections:\n%s", out)
	}
	if !(rootAt < bannerAt && bannerAt < codeAt) {
		t.Errorf("expected root cause, banner, then outer error:\n%s", out)
	}
	if !strings.Contains(lines[1], "AppError") {
		t.Errorf("expected title line to name the error type, got %q", lines[1])
	}
}

func TestReport_WrapsLongWords(t *testing.T) {
	err := stderrors.New(strings.Repeat("x", 100))
	out := Report(err, 30)
	for _, line := range strings.Split(out, "\n") {
		if len(line) != 30 {
			t.Fatalf("line width %d, want 30: %q", len(line), line)
		}
	}
	if Report(nil, 80) != "" {
		t.Error("nil error should render empty report")
	}
}
