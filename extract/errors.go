package extract

import "errors"

var (
	// ErrToolNotFound is returned when an external OCR program is not installed.
	ErrToolNotFound = errors.New("external tool not found")

	// ErrToolFailed is returned when an external program exits unsuccessfully.
	ErrToolFailed = errors.New("external tool failed")

	// ErrMalformedEmail is returned when a message cannot be parsed as RFC 5322.
	ErrMalformedEmail = errors.New("malformed email")

	// ErrUnreadablePDF is returned when the OCR output cannot be opened.
	ErrUnreadablePDF = errors.New("unreadable pdf")
)
