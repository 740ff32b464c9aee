package pass

import (
	"fmt"
	"strings"
)

// Error represents a structured error from the pass package.
type Error interface {
	error
	Code() ErrorCode
	Unwrap() error
}

type ErrorCode string

const (
	// ErrCodeValidation indicates missing or malformed request input.
	ErrCodeValidation ErrorCode = "validation"

	// ErrCodeConfiguration indicates missing pass identifiers or unreadable certificate files.
	ErrCodeConfiguration ErrorCode = "configuration"

	// ErrCodeEncoding indicates the QR code could not be generated.
	ErrCodeEncoding ErrorCode = "encoding"

	// ErrCodeIO indicates a failure reading or staging payload files.
	ErrCodeIO ErrorCode = "io"

	// ErrCodeSigning indicates the manifest could not be signed (including timeouts).
	ErrCodeSigning ErrorCode = "signing"

	// ErrCodeArchive indicates the .pkpass archive could not be written or is malformed.
	ErrCodeArchive ErrorCode = "archive"
)

// PassError represents a structured error from the pass package.
type PassError struct {
	code    ErrorCode
	message string

	// fields names the request fields or configuration items the error refers to
	fields []string

	wrapped error
}

func (e *PassError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *PassError) Code() ErrorCode { return e.code }
func (e *PassError) Unwrap() error   { return e.wrapped }

// Fields returns the request fields or configuration items named by the error (may be empty).
func (e *PassError) Fields() []string { return e.fields }

// NewMissingFieldsError creates a validation error naming every missing request field.
func NewMissingFieldsError(fields []string) error {
	return &PassError{
		code:    ErrCodeValidation,
		message: "Missing required fields: " + strings.Join(fields, ", "),
		fields:  fields,
	}
}

// NewInvalidFieldsError creates a validation error for fields that are present but malformed.
func NewInvalidFieldsError(fields []string) error {
	return &PassError{
		code:    ErrCodeValidation,
		message: "Invalid fields: " + strings.Join(fields, ", "),
		fields:  fields,
	}
}

// NewConfigurationError lists every missing or unreadable configuration item.
func NewConfigurationError(items []string, err error) error {
	return &PassError{
		code:    ErrCodeConfiguration,
		message: "Apple Wallet configuration incomplete: " + strings.Join(items, ", "),
		fields:  items,
		wrapped: err,
	}
}

// WrapEncodingError wraps a QR encoding failure.
func WrapEncodingError(err error, msg string) error {
	return &PassError{code: ErrCodeEncoding, message: msg, wrapped: err}
}

// NewIOError creates an error for payload staging failures.
func NewIOError(msg string) error {
	return &PassError{code: ErrCodeIO, message: msg}
}

// WrapIOError wraps a payload staging failure.
func WrapIOError(err error, msg string) error {
	return &PassError{code: ErrCodeIO, message: msg, wrapped: err}
}

// WrapSigningError wraps a signer failure. The signer's diagnostic stays in the message.
func WrapSigningError(err error, msg string) error {
	return &PassError{code: ErrCodeSigning, message: msg, wrapped: err}
}

// NewArchiveError creates an archive error.
func NewArchiveError(msg string) error {
	return &PassError{code: ErrCodeArchive, message: msg}
}

// WrapArchiveError wraps an archive write or read failure.
func WrapArchiveError(err error, msg string) error {
	return &PassError{code: ErrCodeArchive, message: msg, wrapped: err}
}
