// Package cxerrors provides severity-aware structured errors for the
// resolution engine.
package cxerrors

import (
	"errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is a structured error with resolution context.
type Error struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Algorithm   string   `json:"algorithm,omitempty"`
	Case        string   `json:"case,omitempty"`
	Technique   string   `json:"technique,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
	if e.Algorithm != "" {
		msg += fmt.Sprintf(" (algorithm: %s", e.Algorithm)
		if e.Case != "" {
			msg += fmt.Sprintf(", case: %s", e.Case)
		}
		if e.Technique != "" {
			msg += fmt.Sprintf(", technique: %s", e.Technique)
		}
		msg += ")"
	}
	return msg
}

// Error codes
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeNotApplicable     = "NOT_APPLICABLE"
	CodeResolutionFailed  = "RESOLUTION_FAILED"
	CodeInconsistentCases = "INCONSISTENT_CASES"
	CodeCacheUnavailable  = "CACHE_UNAVAILABLE"
)

// NewValidationError creates a fatal error for a malformed cost expression.
func NewValidationError(algorithm, message string) *Error {
	return &Error{
		Code:        CodeValidationFailed,
		Message:     message,
		Severity:    SeverityFatal,
		Algorithm:   algorithm,
		Recoverable: false,
	}
}

// NewNotApplicable creates a recoverable error for a technique whose
// preconditions are unmet. The selector advances to the next technique.
func NewNotApplicable(technique, reason string) *Error {
	return &Error{
		Code:        CodeNotApplicable,
		Message:     reason,
		Severity:    SeverityWarning,
		Technique:   technique,
		Recoverable: true,
	}
}

// NewResolutionFailure creates a fatal error for a case no technique
// could close.
func NewResolutionFailure(algorithm, caseTag, technique, message string) *Error {
	return &Error{
		Code:        CodeResolutionFailed,
		Message:     message,
		Severity:    SeverityError,
		Algorithm:   algorithm,
		Case:        caseTag,
		Technique:   technique,
		Recoverable: false,
	}
}

// NewInconsistentCases creates a warning for split cases whose resolved
// bounds violate the best ≤ average ≤ worst ordering. The result is
// still returned; the warning travels in its diagnostics.
func NewInconsistentCases(algorithm, message string) *Error {
	return &Error{
		Code:        CodeInconsistentCases,
		Message:     message,
		Severity:    SeverityWarning,
		Algorithm:   algorithm,
		Recoverable: true,
	}
}

// NewCacheUnavailable creates a warning for a result-cache failure.
// Resolution proceeds without the cache.
func NewCacheUnavailable(message string) *Error {
	return &Error{
		Code:        CodeCacheUnavailable,
		Message:     message,
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}

// IsNotApplicable reports whether err is a recoverable NOT_APPLICABLE error.
func IsNotApplicable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeNotApplicable
}

// IsValidation reports whether err is a VALIDATION_FAILED error.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeValidationFailed
}
