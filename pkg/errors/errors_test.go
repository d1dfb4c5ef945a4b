package errors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "basic error without underlying",
			err:      &Error{Code: ExitCodeGeneral, Message: "test error"},
			expected: "test error",
		},
		{
			name:     "error with underlying",
			err:      &Error{Code: ExitCodeConfig, Message: "config error", Underlying: errors.New("file not found")},
			expected: "config error: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{
		Code:       ExitCodeGeneral,
		Message:    "test error",
		Underlying: underlying,
	}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestWrap(t *testing.T) {
	underlying := errors.New("original error")
	err := Wrap(underlying, "wrapped message")

	if err.Error() != "wrapped message: original error" {
		t.Errorf("Error() = %q, want %q", err.Error(), "wrapped message: original error")
	}

	if Wrap(nil, "message") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrapKeepsBackendFields(t *testing.T) {
	inner := BackendError("deepseek", 401, `{"error":"bad key"}`)
	err := Wrap(inner, "convert")

	if err.Code != ExitCodeBackend {
		t.Errorf("Code = %d, want %d", err.Code, ExitCodeBackend)
	}
	if err.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", err.StatusCode)
	}
	if err.Message != "convert: deepseek returned status 401" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIsExitCode(t *testing.T) {
	err := New(ExitCodeBackend, "backend error")

	if !IsExitCode(err, ExitCodeBackend) {
		t.Error("IsExitCode() should return true for matching code")
	}
	if IsExitCode(err, ExitCodeConfig) {
		t.Error("IsExitCode() should return false for non-matching code")
	}
	if IsExitCode(nil, ExitCodeGeneral) {
		t.Error("IsExitCode() should return false for nil error")
	}
	if IsExitCode(errors.New("plain error"), ExitCodeGeneral) {
		t.Error("IsExitCode() should return false for plain error")
	}

	wrapped := fmt.Errorf("convert: %w", EmptyResponseError("gemini"))
	if !IsExitCode(wrapped, ExitCodeEmptyResponse) {
		t.Error("IsExitCode() should see through fmt.Errorf wrapping")
	}
}

func TestStatusCodeAndCodeOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", BackendError("deepseek", 503, ""))

	if got := StatusCode(err); got != 503 {
		t.Errorf("StatusCode() = %d, want 503", got)
	}
	if got := CodeOf(err); got != ExitCodeBackend {
		t.Errorf("CodeOf() = %d, want %d", got, ExitCodeBackend)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("StatusCode(plain) = %d, want 0", got)
	}
	if got := CodeOf(nil); got != ExitCodeSuccess {
		t.Errorf("CodeOf(nil) = %d, want 0", got)
	}
	if got := CodeOf(errors.New("plain")); got != ExitCodeGeneral {
		t.Errorf("CodeOf(plain) = %d, want 1", got)
	}
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		code ExitCode
	}{
		{"configuration", ConfigurationError("bad provider"), ExitCodeConfig},
		{"missing key", MissingKeyError("deepseek", "DEEPSEEK_API_KEY"), ExitCodeConfig},
		{"transport", TransportError("gemini", errors.New("dial tcp: refused")), ExitCodeTransport},
		{"backend", BackendError("deepseek", 500, "boom"), ExitCodeBackend},
		{"empty", EmptyResponseError("deepseek"), ExitCodeEmptyResponse},
		{"clipboard", ClipboardAccessError(errors.New("no wayland")), ExitCodeClipboard},
		{"validation", ValidationError("blank"), ExitCodeValidation},
		{"storage", StorageError("db", errors.New("locked")), ExitCodeStorage},
		{"timeout", TimeoutError("gemini", context.DeadlineExceeded), ExitCodeTimeout},
		{"cancelled", CancelledError("convert"), ExitCodeCancellation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %d, want %d", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestBackendErrorSuggestion(t *testing.T) {
	if BackendError("deepseek", 401, "").Suggestion == "" {
		t.Error("401 should carry a credential suggestion")
	}
	if BackendError("deepseek", 500, "").Suggestion != "" {
		t.Error("500 should not carry a credential suggestion")
	}
}

func TestHandleTo(t *testing.T) {
	color.NoColor = true

	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		if code := handleTo(&buf, nil); code != ExitCodeSuccess {
			t.Errorf("code = %d, want 0", code)
		}
		if buf.Len() != 0 {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("structured error prints message and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		code := handleTo(&buf, MissingKeyError("deepseek", "DEEPSEEK_API_KEY"))
		if code != ExitCodeConfig {
			t.Errorf("code = %d, want %d", code, ExitCodeConfig)
		}
		out := buf.String()
		if !strings.Contains(out, "Error: no API key configured for deepseek") {
			t.Errorf("missing message in %q", out)
		}
		if !strings.Contains(out, "Suggestion: Set DEEPSEEK_API_KEY") {
			t.Errorf("missing suggestion in %q", out)
		}
	})

	t.Run("backend detail stays out of terminal output", func(t *testing.T) {
		var buf bytes.Buffer
		handleTo(&buf, BackendError("deepseek", 500, "internal trace id 42"))
		if strings.Contains(buf.String(), "trace id 42") {
			t.Errorf("detail leaked to terminal: %q", buf.String())
		}
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		if code := handleTo(&buf, errors.New("plain")); code != ExitCodeGeneral {
			t.Errorf("code = %d, want 1", code)
		}
	})
}

func TestHandleQuietReturn(t *testing.T) {
	if code := HandleQuietReturn(nil); code != ExitCodeSuccess {
		t.Errorf("code = %d, want 0", code)
	}
	if code := HandleQuietReturn(TransportError("x", errors.New("y"))); code != ExitCodeTransport {
		t.Errorf("code = %d, want %d", code, ExitCodeTransport)
	}
	if code := HandleQuietReturn(errors.New("plain")); code != ExitCodeGeneral {
		t.Errorf("code = %d, want 1", code)
	}
}

func TestTransportErrorTimeouts(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ExitCode
	}{
		{"refused", errors.New("dial tcp: connection refused"), ExitCodeTransport},
		{"cancelled", context.Canceled, ExitCodeTransport},
		{"deadline", context.DeadlineExceeded, ExitCodeTimeout},
		{"wrapped deadline", fmt.Errorf("doRequest: %w", context.DeadlineExceeded), ExitCodeTimeout},
		{"client timeout", &url.Error{Op: "Post", URL: "http://x", Err: timeoutErr{}}, ExitCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TransportError("deepseek", tt.err)
			if err.Code != tt.want {
				t.Errorf("Code = %d, want %d", err.Code, tt.want)
			}
			if !IsTransport(err) {
				t.Error("IsTransport() = false")
			}
			if !errors.Is(err, tt.err) {
				t.Error("underlying error lost")
			}
		})
	}

	if IsTransport(BackendError("deepseek", 500, "")) {
		t.Error("IsTransport(backend error) = true")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestReported(t *testing.T) {
	if Reported(nil) != nil {
		t.Error("Reported(nil) should return nil")
	}

	inner := BackendError("gemini", 401, "{}")
	err := Reported(inner)
	if !IsReported(err) {
		t.Error("IsReported() = false for a reported error")
	}
	if IsReported(inner) {
		t.Error("IsReported() = true for an unreported error")
	}
	if StatusCode(err) != 401 || CodeOf(err) != ExitCodeBackend {
		t.Error("Reported should keep the error chain")
	}
	if code := Exit(err); code != ExitCodeBackend {
		t.Errorf("Exit() = %d, want %d", code, ExitCodeBackend)
	}
}

func TestPrintSuggestion(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSuggestion(&buf, MissingKeyError("gemini", "GEMINI_API_KEY"))
	if !strings.HasPrefix(buf.String(), "Suggestion: Set GEMINI_API_KEY") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	PrintSuggestion(&buf, EmptyResponseError("gemini"))
	PrintSuggestion(&buf, errors.New("plain"))
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}
