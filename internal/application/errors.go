package application

import "errors"

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// User-facing messages.
const (
	MsgCredentialsRequired = "Employee ID and password are required"
	MsgInvalidCredentials  = "Invalid employee ID or password"
	MsgEmployeeIDRequired  = "Employee ID is required"
	MsgInvalidEmployeeID   = "Invalid employee ID"
	MsgEmployeeNotFound    = "Employee ID not found"
	MsgAllFieldsRequired   = "All fields are required"
	MsgEmployeeIDExists    = "Employee ID already exists"
	MsgSaveFailed          = "Failed to save user data"
	MsgLogoutFailed        = "Error logging out"
	MsgInternal            = "Internal server error"
)

// Error carries a kind, a message safe to show to clients and an optional cause
// that is only ever logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	out := []error{e.Kind}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// Message returns the client-facing message for err, falling back to the
// generic internal message for anything that is not an *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return MsgInternal
}
