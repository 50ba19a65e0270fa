package apperror

// AppError is an expected, recoverable outcome of a domain operation.
// Code is the HTTP status the API layer answers with.
type AppError struct {
	Code    int    // HTTP status code (e.g. 404, 409)
	Message string // User-facing message
	Err     error  // Underlying cause, never shown to the client
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an AppError that keeps err as its cause.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
