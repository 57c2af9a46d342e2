package repositories

import "fmt"

// CounterErrorCode says why a sequence could not advance.
type CounterErrorCode string

const (
	// CounterErrorInvalidInput marks a blank counter id or a negative step.
	CounterErrorInvalidInput CounterErrorCode = "invalid_input"
	// CounterErrorExhausted marks a counter that reached its configured maximum.
	CounterErrorExhausted CounterErrorCode = "exhausted"
)

// CounterError is returned by CounterRepository implementations.
type CounterError struct {
	Code    CounterErrorCode
	Counter string
	Message string
}

// Error implements the error interface.
func (e *CounterError) Error() string {
	if e == nil {
		return ""
	}
	if e.Counter == "" {
		return "counter: " + e.Message
	}
	return fmt.Sprintf("counter %s: %s", e.Counter, e.Message)
}

// NewCounterError builds a CounterError for counter. An empty message falls back to the code.
func NewCounterError(code CounterErrorCode, counter, message string) *CounterError {
	if message == "" {
		message = string(code)
	}
	return &CounterError{Code: code, Counter: counter, Message: message}
}
