package service

import "errors"

var ErrEmptyTask = errors.New("task must not be empty")
var ErrInvalidFeedback = errors.New("invalid feedback")

type sentinelError struct {
	msg      string
	sentinel error
}

func (e sentinelError) Error() string {
	return e.msg
}

func (e sentinelError) Unwrap() error {
	return e.sentinel
}

func wrapSentinel(msg string, sentinel error) error {
	return sentinelError{msg: msg, sentinel: sentinel}
}
