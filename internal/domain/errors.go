package domain

import (
	"errors"
	"strconv"
)

// InputError reports a problem with one of the line-oriented input tables.
// Line is 0 when the failure concerns the whole file (e.g. it cannot be opened).
type InputError struct {
	Path string // Input file path
	Line int    // 1-based line number, 0 for file-level errors
	Err  error  // Underlying error
}

func (e *InputError) Error() string {
	if e.Line == 0 {
		return e.Path + ": " + e.Err.Error()
	}
	return e.Path + ":" + strconv.Itoa(e.Line) + ": " + e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates a file-level input error
func NewInputError(path string, err error) *InputError {
	return &InputError{Path: path, Err: err}
}

// NewLineError creates an input error pinned to a line
func NewLineError(path string, line int, err error) *InputError {
	return &InputError{Path: path, Line: line, Err: err}
}

// OutputError represents a failure to open or write an output stream
type OutputError struct {
	Target string
	Err    error
}

func (e *OutputError) Error() string {
	return "output " + e.Target + ": " + e.Err.Error()
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrMissingInput is returned when an input table cannot be opened.
	ErrMissingInput = errors.New("missing input")

	// ErrMalformedLine is returned for a line with the wrong field count or a non-numeric field.
	ErrMalformedLine = errors.New("malformed line")

	// ErrUnknownInstrument is returned when an event references a stock number not in the catalog.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrUnknownGroup is returned when the model sequence names a group code not in the registry.
	ErrUnknownGroup = errors.New("unknown group code")

	// ErrSequenceReused is returned when an event sequence number would repeat an order identifier
	ErrSequenceReused = errors.New("event sequence reused")

	// ErrEmptyPlan is returned when the model sequence has no entries
	ErrEmptyPlan = errors.New("empty model sequence")

	// ErrPlanGap is returned when model sequence indices are not contiguous from 0
	ErrPlanGap = errors.New("model sequence index gap")

	// ErrOutputUnwritable is returned when an output stream cannot be opened
	ErrOutputUnwritable = errors.New("output not writable")

	// ErrArchiveDisabled is returned for archive queries when storage is not enabled
	ErrArchiveDisabled = errors.New("run archive disabled")

	// ErrRunNotFound is returned when an archived run does not exist
	ErrRunNotFound = errors.New("run not found")

	// ErrConfigNotFound is returned when configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
