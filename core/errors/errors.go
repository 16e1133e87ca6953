// Package errors provides the error kinds reported by the fuse transcoding engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per error kind.
var (
	// ErrInvalidInput indicates a missing, unreadable or malformed input file or record
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig indicates a parameter outside its accepted domain
	ErrInvalidConfig = errors.New("invalid config")
	// ErrValueOutOfRange indicates a record value that does not fit the configured bit widths
	ErrValueOutOfRange = errors.New("value out of range")
)

// Kind classifies an engine error.
type Kind int

const (
	// KindUnknown is reported for nil errors and errors from outside the engine.
	KindUnknown Kind = iota
	// KindInvalidInput wraps ErrInvalidInput.
	KindInvalidInput
	// KindInvalidConfig wraps ErrInvalidConfig.
	KindInvalidConfig
	// KindValueOutOfRange wraps ErrValueOutOfRange.
	KindValueOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindValueOutOfRange:
		return "ValueOutOfRange"
	default:
		return "Unknown"
	}
}

// KindOf reports the kind of err by walking its wrap chain.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrValueOutOfRange):
		return KindValueOutOfRange
	default:
		return KindUnknown
	}
}

// InputError represents an input file that cannot be used.
type InputError struct {
	Path    string // File path or declared blob name
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *InputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid input %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

// Unwrap exposes the underlying error together with ErrInvalidInput.
func (e *InputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// ConfigError represents a configuration parameter that failed validation.
type ConfigError struct {
	Field   string // Config key that failed validation
	Value   string // Offending value
	Message string // Human-readable error message
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid config: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ParseError represents a record line that is not a hexadecimal integer.
type ParseError struct {
	Line    int    // Zero-based body line index, -1 when unknown
	Text    string // Offending record text
	Message string // Error details
}

func (e *ParseError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("failed to parse record at body line %d (%q): %s", e.Line, e.Text, e.Message)
	}
	return fmt.Sprintf("failed to parse record %q: %s", e.Text, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidInput
}

// RangeError represents a value that needs more bits than a fixed width allows.
type RangeError struct {
	Line  int    // Zero-based body line index, -1 when unknown
	What  string // Which rendering overflowed, e.g. "record" or "spliced record"
	Bits  int    // Bits the value needs
	Width int    // Bits available
}

func (e *RangeError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("%s at body line %d needs %d bits, width is %d", e.What, e.Line, e.Bits, e.Width)
	}
	return fmt.Sprintf("%s needs %d bits, width is %d", e.What, e.Bits, e.Width)
}

func (e *RangeError) Unwrap() error {
	return ErrValueOutOfRange
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Helper functions for creating common errors

// NewInput creates an InputError
func NewInput(path, message string) *InputError {
	return &InputError{
		Path:    path,
		Message: message,
	}
}

// NewConfig creates a ConfigError
func NewConfig(field string, value any, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   fmt.Sprint(value),
		Message: message,
	}
}

// NewParse creates a ParseError with an unknown line index
func NewParse(text, message string) *ParseError {
	return &ParseError{
		Line:    -1,
		Text:    text,
		Message: message,
	}
}

// NewRange creates a RangeError with an unknown line index
func NewRange(what string, bits, width int) *RangeError {
	return &RangeError{
		Line:  -1,
		What:  what,
		Bits:  bits,
		Width: width,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// AtLine records the body line index on parse and range errors.
// Other errors are returned unchanged.
func AtLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		cp := *pe
		cp.Line = line
		return &cp
	}
	var re *RangeError
	if errors.As(err, &re) {
		cp := *re
		cp.Line = line
		return &cp
	}
	return err
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
