package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"wordsmith/pkg/logger"

	"github.com/fatih/color"
)

type ExitCode int

const (
	ExitCodeSuccess       ExitCode = 0
	ExitCodeGeneral       ExitCode = 1
	ExitCodeConfig        ExitCode = 2
	ExitCodeTransport     ExitCode = 3
	ExitCodeBackend       ExitCode = 4
	ExitCodeEmptyResponse ExitCode = 5
	ExitCodeClipboard     ExitCode = 6
	ExitCodeValidation    ExitCode = 7
	ExitCodeFileOperation ExitCode = 8
	ExitCodeCancellation  ExitCode = 9
	ExitCodeTimeout       ExitCode = 10
	ExitCodeStorage       ExitCode = 11
)

// Standardized user-facing messages
const (
	ErrMsgConversionFailed = "Failed to convert text. Please check your API key and try again."
	ErrMsgHistoryFailed    = "History operation failed"
)

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
	// StatusCode is the HTTP status reported by a backend, if any.
	StatusCode int
	// Detail holds diagnostic text (e.g. a response body) for logs only.
	Detail string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func NewWithError(code ExitCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

func NewWithSuggestion(code ExitCode, message string, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	if wrapped, ok := As(err); ok {
		return &Error{
			Code:       wrapped.Code,
			Message:    message + ": " + wrapped.Message,
			Underlying: wrapped.Underlying,
			Suggestion: wrapped.Suggestion,
			StatusCode: wrapped.StatusCode,
			Detail:     wrapped.Detail,
		}
	}

	return &Error{
		Code:       ExitCodeGeneral,
		Message:    message,
		Underlying: err,
	}
}

func WrapWithCode(err error, code ExitCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsExitCode(err error, code ExitCode) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}

// CodeOf returns the exit code carried by err, or ExitCodeGeneral.
func CodeOf(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	return ExitCodeGeneral
}

// StatusCode returns the backend HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := As(err); ok {
		return e.StatusCode
	}
	return 0
}

// HandleReturn logs err, prints it to stderr and returns the exit code the
// process should terminate with.
func HandleReturn(err error) ExitCode {
	return handleTo(os.Stderr, err)
}

func handleTo(w io.Writer, err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	exitCode := ExitCodeGeneral
	var message string
	var suggestion string

	if e, ok := As(err); ok {
		exitCode = e.Code
		message = e.Message
		suggestion = e.Suggestion

		event := logger.Error().Int("exit_code", int(e.Code))
		if e.StatusCode != 0 {
			event = event.Int("status", e.StatusCode)
		}
		if e.Detail != "" {
			event = event.Str("detail", e.Detail)
		}
		if e.Underlying != nil {
			event = event.Err(e.Underlying)
		}
		event.Msg(e.Message)
	} else {
		message = err.Error()
		logger.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)

	fmt.Fprintln(w)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, message)
	printSuggestion(w, suggestion)
	fmt.Fprintln(w)

	return exitCode
}

// PrintSuggestion writes the suggestion carried by err, if any.
func PrintSuggestion(w io.Writer, err error) {
	if e, ok := As(err); ok {
		printSuggestion(w, e.Suggestion)
	}
}

func printSuggestion(w io.Writer, suggestion string) {
	if suggestion == "" {
		return
	}
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	yellow.Fprint(w, "Suggestion: ")
	lines := strings.Split(suggestion, "\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintln(w, line)
		} else if strings.HasPrefix(line, "  -") {
			cyan.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, "            "+line)
		}
	}
}

type reportedError struct {
	err error
}

func (r *reportedError) Error() string { return r.err.Error() }
func (r *reportedError) Unwrap() error { return r.err }

// Reported marks err as already shown to the user, so Exit only logs it.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func IsReported(err error) bool {
	var r *reportedError
	return stderrors.As(err, &r)
}

// Exit picks HandleReturn or HandleQuietReturn depending on whether err was
// already reported.
func Exit(err error) ExitCode {
	if IsReported(err) {
		return HandleQuietReturn(err)
	}
	return HandleReturn(err)
}

// HandleQuietReturn returns the exit code for err without printing anything
// beyond a log line for foreign errors.
func HandleQuietReturn(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	if e, ok := As(err); ok {
		return e.Code
	}
	logger.Error().Err(err).Msg("operation failed")
	return ExitCodeGeneral
}

// ConfigurationError reports a missing or invalid setting. Raised before any
// network activity.
func ConfigurationError(message string) *Error {
	return &Error{
		Code:       ExitCodeConfig,
		Message:    message,
		Suggestion: "Check your configuration file or set the required environment variables.",
	}
}

// MissingKeyError is the ConfigurationError for a provider without a key.
func MissingKeyError(provider, envVar string) *Error {
	return &Error{
		Code:    ExitCodeConfig,
		Message: fmt.Sprintf("no API key configured for %s", provider),
		Suggestion: fmt.Sprintf("Set %s, add api_key to ~/.config/wordsmith/config.yaml,\n"+
			"or run 'wordsmith config set-key --provider %s'", envVar, provider),
	}
}

// TransportError reports a backend call that did not complete. A call cut
// off by a deadline is reported through TimeoutError instead.
func TransportError(provider string, err error) *Error {
	if isTimeout(err) {
		return TimeoutError(provider, err)
	}
	return &Error{
		Code:       ExitCodeTransport,
		Message:    fmt.Sprintf("request to %s did not complete", provider),
		Underlying: err,
		Suggestion: "Check your network connection and try again.",
	}
}

// BackendError reports a completed call with a non-success status.
func BackendError(provider string, status int, body string) *Error {
	e := &Error{
		Code:       ExitCodeBackend,
		Message:    fmt.Sprintf("%s returned status %d", provider, status),
		StatusCode: status,
		Detail:     body,
	}
	if status == 401 || status == 403 {
		e.Suggestion = "The API key was rejected. Verify it with 'wordsmith config show'."
	}
	return e
}

// EmptyResponseError reports a successful call that yielded no HTML.
func EmptyResponseError(provider string) *Error {
	return &Error{
		Code:    ExitCodeEmptyResponse,
		Message: fmt.Sprintf("empty response from %s", provider),
	}
}

// ClipboardAccessError reports a denied or unsupported clipboard write.
func ClipboardAccessError(err error) *Error {
	return &Error{
		Code:       ExitCodeClipboard,
		Message:    "clipboard access denied or failed",
		Underlying: err,
		Suggestion: "Run under a Wayland session with wlr-data-control support,\n" +
			"or set clipboard.plain_fallback: true to copy plain text only.",
	}
}

func ValidationError(message string) *Error {
	return &Error{
		Code:    ExitCodeValidation,
		Message: message,
	}
}

func StorageError(message string, err error) *Error {
	return &Error{
		Code:       ExitCodeStorage,
		Message:    message,
		Underlying: err,
	}
}

func NotFoundError(resource string) *Error {
	return &Error{
		Code:       ExitCodeValidation,
		Message:    fmt.Sprintf("%s not found", resource),
		Suggestion: "Use 'wordsmith history list' to see stored conversions.",
	}
}

// TimeoutError is the transport failure of a call that ran out of time.
func TimeoutError(provider string, err error) *Error {
	return &Error{
		Code:       ExitCodeTimeout,
		Message:    fmt.Sprintf("request to %s timed out", provider),
		Underlying: err,
		Suggestion: "Try again with a longer timeout using --timeout flag.",
	}
}

// IsTransport reports whether err is a call that did not complete, timed
// out or not.
func IsTransport(err error) bool {
	code := CodeOf(err)
	return code == ExitCodeTransport || code == ExitCodeTimeout
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func CancelledError(operation string) *Error {
	return &Error{
		Code:       ExitCodeCancellation,
		Message:    fmt.Sprintf("Operation cancelled: %s", operation),
		Suggestion: "The operation was interrupted. No changes were made.",
	}
}
