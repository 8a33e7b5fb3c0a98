package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hengadev/recordseal"
)

// Exit codes for CLI commands.
const (
	ExitSuccess  = 0 // Successful execution
	ExitFailure  = 1 // Operation error (bad input, storage, configuration)
	ExitMismatch = 2 // Record validated but its fingerprint does not match
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeSchema      = "E002"
	ErrCodeSource      = "E003"
	ErrCodeStorage     = "E004"
	ErrCodeCrypto      = "E005"
	ErrCodeConfig      = "E006"
	ErrCodeMismatch    = "E007"
	ErrCodeInvalidFlag = "E008"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set once the failure has been written by an OutputFormatter.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

func reported(e *ExitError) *ExitError {
	e.Reported = true
	return e
}

// IsReported reports whether err was already written to the command output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps pipeline errors to CLI error codes.
func errorCode(err error) string {
	switch {
	case recordseal.IsSchemaError(err):
		return ErrCodeSchema
	case recordseal.IsSourceError(err):
		return ErrCodeSource
	case recordseal.IsStorageError(err):
		return ErrCodeStorage
	case recordseal.IsCryptoError(err):
		return ErrCodeCrypto
	case recordseal.IsConfigurationError(err):
		return ErrCodeConfig
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"` // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *CLIError   `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success outputs a successful result. In text mode data is printed with its
// String method when it has one.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns it as an ExitError with ExitFailure.
func (f *OutputFormatter) Fail(message string, err error) error {
	code := errorCode(err)
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); outErr != nil {
		return outErr
	}
	return reported(WrapExitError(ExitFailure, fmt.Sprintf("%s [%s]", message, code), err))
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
