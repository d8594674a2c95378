package core

import "net/http"

// AppError carries the HTTP status a handler should answer with.
type AppError struct {
	Message string
	Code    int
	Err     error
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

// NewUpstreamError builds a 502 error for a failed model or backend call
func NewUpstreamError(msg string, err error) *AppError {
	return &AppError{Message: msg, Code: http.StatusBadGateway, Err: err}
}

// NewBusyError builds a 409 error for work that is already under way
func NewBusyError(msg string, err error) *AppError {
	return &AppError{Message: msg, Code: http.StatusConflict, Err: err}
}
