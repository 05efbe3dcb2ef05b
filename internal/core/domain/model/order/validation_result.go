package order

import "strings"

// Code is the machine readable reason of a rejected or failed status change.
// Codes are stable: they are returned to API clients and stored as batch
// failure reasons.
type Code string

const (
	CodeUnknownStatus      Code = "UNKNOWN_STATUS"
	CodeTerminalState      Code = "TERMINAL_STATE"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
	CodeNotFound           Code = "NOT_FOUND"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeConflict           Code = "CONFLICT"
	CodeInfrastructure     Code = "INFRASTRUCTURE"
	CodeCancelled          Code = "CANCELLED"
)

func (c Code) String() string {
	return string(c)
}

// ValidationError is one violated rule of a requested transition.
type ValidationError struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// ValidationResult is produced fresh for every validation and never persisted.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors"`
}

func ValidResult() ValidationResult {
	return ValidationResult{Valid: true, Errors: []ValidationError{}}
}

func InvalidResult(errors ...ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errors}
}

// FirstCode returns the code of the first error, or "" for a valid result.
func (r ValidationResult) FirstCode() Code {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Code
}

func (r ValidationResult) HasCode(code Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func (r ValidationResult) String() string {
	if r.Valid {
		return "valid"
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, string(e.Code)+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}
