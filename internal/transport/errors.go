package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericFailureMessage is shown whenever a response cannot be understood
const GenericFailureMessage = "Network error or invalid response format."

// RequestError means the backend answered with a non-success status.
// Message is the backend's detail, or "Error: <code> <status text>".
type RequestError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *RequestError) Error() string {
	return e.Message
}

// HTTPStatus returns the upstream status code
func (e *RequestError) HTTPStatus() int {
	return e.StatusCode
}

// ParseError means the response body was not valid JSON
type ParseError struct {
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError means no response was received at all
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SchemaError means a success response did not match the declared shape
type SchemaError struct {
	Operation string
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unexpected response shape for %s: %v", e.Operation, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the backend
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}
