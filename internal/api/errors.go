// ABOUTME: Error values for expected failure categories of API calls
// ABOUTME: Expected failures are returned, never panicked; see package doc

package api

import (
	"errors"
	"fmt"
)

// ErrEmptyCredentials is returned by Login when the username or
// password is empty. No network call is made in that case.
var ErrEmptyCredentials = errors.New("username or password is empty")

// StatusError reports a non-200 HTTP response from the server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// ServerError carries a failure message from a well-formed response
// envelope whose status was not "ok".
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}
