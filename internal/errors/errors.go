package errors

import "fmt"

// ErrorCode represents a daybook error code.
type ErrorCode string

const (
	ErrNotConfigured   ErrorCode = "NOT_CONFIGURED"   // 500
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound        ErrorCode = "NOT_FOUND"        // 404
	ErrUnsupportedFile ErrorCode = "UNSUPPORTED_FILE" // 415
	ErrDuplicate       ErrorCode = "DUPLICATE"        // 409
	ErrUnavailable     ErrorCode = "UNAVAILABLE"      // 503 (external collaborators)
	ErrInternal        ErrorCode = "INTERNAL"         // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotConfigured creates a 500 error for missing storage configuration.
func NewNotConfigured(what string) *Error {
	return &Error{
		Code:    ErrNotConfigured,
		Status:  500,
		Message: fmt.Sprintf("%s is not configured; run 'daybook config set' first", what),
		Details: map[string]any{"missing": what},
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a record or path that cannot be found.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewUnsupportedFile creates a 415 error for file types outside the import allowlist.
func NewUnsupportedFile(path, filetype string) *Error {
	return &Error{
		Code:    ErrUnsupportedFile,
		Status:  415,
		Message: fmt.Sprintf("%s is not a supported file type (%s)", path, filetype),
		Details: map[string]any{"path": path, "filetype": filetype},
	}
}

// NewDuplicate creates a 409 error for an already-imported record.
func NewDuplicate(key, value string) *Error {
	return &Error{
		Code:    ErrDuplicate,
		Status:  409,
		Message: fmt.Sprintf("record with %s %q already imported", key, value),
		Details: map[string]any{"key": key, "value": value},
	}
}

// NewUnavailable creates a 503 error for a failed external collaborator.
func NewUnavailable(service string, err error) *Error {
	msg := fmt.Sprintf("%s is unavailable", service)
	if err != nil {
		msg = fmt.Sprintf("%s is unavailable: %v", service, err)
	}
	return &Error{
		Code:    ErrUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"service": service},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a daybook Error with the given code.
func Is(err error, code ErrorCode) bool {
	if dErr, ok := err.(*Error); ok {
		return dErr.Code == code
	}
	return false
}
