package tool

import "github.com/cloo-solutions/shopmate/internal/domain"

// Result is the outcome of one tool invocation: a payload on success, or an
// error code with a human-readable message.
type Result struct {
	Payload string
	Code    string
	Message string
}

// Success wraps a tool payload.
func Success(payload string) Result {
	return Result{Payload: payload}
}

// Failure builds an error result. Code is one of the domain error codes
// VALIDATION_ERROR, NOT_FOUND, TIMEOUT or TOOL_ERROR.
func Failure(code, message string) Result {
	return Result{Code: code, Message: message}
}

// OK reports whether the result carries a payload.
func (r Result) OK() bool {
	return r.Code == ""
}

func validationFailure(message string) Result {
	return Failure(domain.ErrCodeValidation, message)
}
