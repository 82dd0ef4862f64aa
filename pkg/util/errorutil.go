package util

import (
	"errors"
	"fmt"
)

// ErrorKind classifies client-side failures.
type ErrorKind string

const (
	// KindTransport covers network failures: unreachable host, timeout,
	// cancelled request.
	KindTransport ErrorKind = "TRANSPORT"
	// KindHTTPStatus covers non-success HTTP responses.
	KindHTTPStatus ErrorKind = "HTTP_STATUS"
	// KindMalformedPayload covers responses that decode but do not match
	// the expected envelope shape.
	KindMalformedPayload ErrorKind = "MALFORMED_PAYLOAD"
	// KindValidation covers client-side rejections before any network call.
	KindValidation ErrorKind = "VALIDATION"
)

// ClientError standardizes application errors.
type ClientError struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError constructs a ClientError.
func NewClientError(kind ErrorKind, message string, details map[string]any) *ClientError {
	return &ClientError{Kind: kind, Message: message, Details: details}
}

func NewTransportError(message string, err error) error {
	return &ClientError{Kind: KindTransport, Message: message, Err: err}
}

func NewHTTPStatusError(message string, status int) error {
	return &ClientError{Kind: KindHTTPStatus, Message: message, HTTPStatus: status}
}

func NewMalformedPayloadError(message string, err error) error {
	return &ClientError{Kind: KindMalformedPayload, Message: message, Err: err}
}

func NewValidationError(message string, details map[string]any) error {
	return NewClientError(KindValidation, message, details)
}

// ToClientError converts generic errors to ClientError.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &ClientError{
		Kind:    KindTransport,
		Message: "request failed",
		Err:     err,
	}
}

// KindOf returns the classification for an error, defaulting to transport.
func KindOf(err error) ErrorKind {
	if ce := ToClientError(err); ce != nil {
		return ce.Kind
	}
	return KindTransport
}
