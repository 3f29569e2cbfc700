package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode represents different types of window command errors
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeWindowNotFound
	ErrCodeMonitorUnavailable
	ErrCodeGeometryApply
	ErrCodeVisibility
	ErrCodeFocus
	ErrCodeInvalidArgument
	ErrCodeUnknownCommand
	ErrCodeInternal
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeWindowNotFound:
		return "WINDOW_NOT_FOUND"
	case ErrCodeMonitorUnavailable:
		return "MONITOR_UNAVAILABLE"
	case ErrCodeGeometryApply:
		return "GEOMETRY_APPLY"
	case ErrCodeVisibility:
		return "VISIBILITY"
	case ErrCodeFocus:
		return "FOCUS"
	case ErrCodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case ErrCodeUnknownCommand:
		return "UNKNOWN_COMMAND"
	case ErrCodeInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// defaultMessage is what the caller sees when no underlying error exists
func (e ErrorCode) defaultMessage() string {
	switch e {
	case ErrCodeWindowNotFound:
		return "Window not found"
	case ErrCodeMonitorUnavailable:
		return "No monitor available"
	case ErrCodeUnknownCommand:
		return "Unknown command"
	default:
		return "window error"
	}
}

// WindowError is a window command failure with its classification and context.
// Error() passes the underlying description through unchanged so the calling
// UI sees exactly what the toolkit reported.
type WindowError struct {
	Op        string            // command or operation name
	Window    string            // logical window name, if any
	Err       error             // underlying error
	Code      ErrorCode         // error classification
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *WindowError) Error() string {
	if e == nil {
		return "window error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code.defaultMessage()
}

// Detail renders the error with its operation, code and context for logs
func (e *WindowError) Detail() string {
	if e == nil {
		return "window error"
	}

	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Window != "" {
		parts = append(parts, fmt.Sprintf("window=%s", e.Window))
	}
	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	if len(parts) == 0 {
		return e.Error()
	}
	return fmt.Sprintf("%s [%s]", e.Error(), strings.Join(parts, " "))
}

func (e *WindowError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *WindowError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*WindowError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *WindowError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *WindowError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *WindowError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not safe once the error has been shared with other goroutines.
func (e *WindowError) WithContext(key, value string) *WindowError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewWindowError creates a new window error with the given parameters
func NewWindowError(op, window string, err error, code ErrorCode) *WindowError {
	return &WindowError{
		Op:        op,
		Window:    window,
		Err:       err,
		Code:      code,
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewWindowErrorWithContext creates a new window error with additional context
func NewWindowErrorWithContext(op, window string, err error, code ErrorCode, context map[string]string) *WindowError {
	winErr := NewWindowError(op, window, err, code)
	for k, v := range context {
		winErr.Context[k] = v
	}
	return winErr
}

// NewWindowNotFound reports that a named window is absent from the registry
func NewWindowNotFound(op, window string) *WindowError {
	return NewWindowError(op, window, nil, ErrCodeWindowNotFound)
}

// CodeOf returns the classification of err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var winErr *WindowError
	if errors.As(err, &winErr) {
		return winErr.Code
	}
	return ErrCodeUnknown
}

// IsWindowNotFound checks if the error is a "window not found" error
func IsWindowNotFound(err error) bool {
	return CodeOf(err) == ErrCodeWindowNotFound
}

// IsMonitorUnavailable checks if the error is a monitor query error
func IsMonitorUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeMonitorUnavailable
}

// IsGeometryApply checks if the error came from a size or position setter
func IsGeometryApply(err error) bool {
	return CodeOf(err) == ErrCodeGeometryApply
}

// IsVisibility checks if the error came from a show, hide or visibility read
func IsVisibility(err error) bool {
	return CodeOf(err) == ErrCodeVisibility
}

// IsFocus checks if the error is a focus-grant failure
func IsFocus(err error) bool {
	return CodeOf(err) == ErrCodeFocus
}

// IsInvalidArgument checks if the error is a parameter validation error
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrCodeInvalidArgument
}

// IsUnknownCommand checks if the error names an unregistered command
func IsUnknownCommand(err error) bool {
	return CodeOf(err) == ErrCodeUnknownCommand
}
