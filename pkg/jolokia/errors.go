package jolokia

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass is a coarse classification of a failed agent read.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx errors, including unknown MBeans.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx errors from the agent or the JVM.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses from a proxy in front
	// of the agent.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network errors and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a response that is not valid Jolokia JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// Error is a failed read with the status reported by HTTP or by the
// Jolokia envelope.
type Error struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jolokia %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("jolokia %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP or envelope status to an ErrorClass.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classOf returns the class of err. Errors that are not *Error are treated
// as network errors.
func classOf(err error) ErrorClass {
	var jerr *Error
	if errors.As(err, &jerr) {
		return jerr.ErrorClass
	}
	return ErrorClassNetwork
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		// 4xx and undecodable bodies will not get better by asking again.
		return false
	}
}
