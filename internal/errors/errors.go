package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidSampleSize indicates the initial sample length is outside [3,30]
	InvalidSampleSize ErrorCode = "INVALID_SAMPLE_SIZE"
	// MissingCriticalValue indicates the table has no entry for a size the analysis needs
	MissingCriticalValue ErrorCode = "MISSING_CRITICAL_VALUE"
	// DegenerateComparison indicates a zero denominator in a Q statistic
	DegenerateComparison ErrorCode = "DEGENERATE_COMPARISON"
	// EmptyTrimmedSample indicates a mean was requested for an empty sample
	EmptyTrimmedSample ErrorCode = "EMPTY_TRIMMED_SAMPLE"
	// InvalidTable indicates a critical-value table failed validation
	InvalidTable ErrorCode = "INVALID_TABLE"
	// InvalidInput indicates raw sample input could not be parsed
	InvalidInput ErrorCode = "INVALID_INPUT"
	// HistoryNotFound indicates a recorded run doesn't exist
	HistoryNotFound ErrorCode = "HISTORY_NOT_FOUND"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditInput suggests changing the analysed data
	EditInput FixActionType = "edit-input"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Description string        `json:"description,omitempty"`
}

// AnalysisError is the typed failure returned by every qdixon package.
type AnalysisError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrInvalidSampleSize    = &AnalysisError{Code: InvalidSampleSize}
	ErrMissingCriticalValue = &AnalysisError{Code: MissingCriticalValue}
	ErrDegenerateComparison = &AnalysisError{Code: DegenerateComparison}
	ErrEmptyTrimmedSample   = &AnalysisError{Code: EmptyTrimmedSample}
	ErrInvalidTable         = &AnalysisError{Code: InvalidTable}
	ErrInvalidInput         = &AnalysisError{Code: InvalidInput}
	ErrHistoryNotFound      = &AnalysisError{Code: HistoryNotFound}
)

// New creates an AnalysisError with the default suggested fixes for its code.
func New(code ErrorCode, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *AnalysisError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an AnalysisError with the same code.
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error
func (e *AnalysisError) WithDetails(details interface{}) *AnalysisError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first AnalysisError in err's chain,
// or InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InvalidSampleSize: {
		{
			Type:        EditInput,
			Description: "Provide between 3 and 30 values",
		},
	},
	MissingCriticalValue: {
		{
			Type:        RunCommand,
			Command:     "qdixon table export --out table.toml",
			Description: "Export the current table, add the missing sizes, and pass it with --table",
		},
	},
	DegenerateComparison: {
		{
			Type:        EditInput,
			Description: "The sample has repeated values at the tested extremes; the Q statistic is undefined",
		},
	},
	InvalidTable: {
		{
			Type:        RunCommand,
			Command:     "qdixon table show",
			Description: "Compare against the default table layout",
		},
	},
	InvalidInput: {
		{
			Type:        EditInput,
			Description: "Separate decimal values with commas, semicolons, or whitespace",
		},
	},
	HistoryNotFound: {
		{
			Type:        RunCommand,
			Command:     "qdixon history list",
			Description: "List recorded analysis runs",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
