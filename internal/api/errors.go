package api

import "fmt"

type ErrorCode string

// transport level error codes (pipeline errors are pass.PassError)
const (
	ErrCodeMalformedRequest  ErrorCode = "malformed_request"
	ErrCodeRequestTooLarge   ErrorCode = "request_too_large"
	ErrCodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
)

// Error is an HTTP transport error (request decoding, limits).
type Error struct {
	code    ErrorCode
	message string
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Unwrap() error   { return e.wrapped }

// WrapMalformedRequestError is used when the body cannot be decoded.
func WrapMalformedRequestError(err error, msg string) error {
	return &Error{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

func NewRequestTooLargeError(msg string) error {
	return &Error{code: ErrCodeRequestTooLarge, message: msg}
}

func NewRateLimitError(msg string) error {
	return &Error{code: ErrCodeRateLimitExceeded, message: msg}
}
