package pdbebridge

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the local (pre-network) failure kinds. The concrete error
// values returned by the client match them with errors.Is.
var (
	ErrUnknownEndpoint     = errors.New("unknown endpoint")
	ErrMissingParameter    = errors.New("missing parameter")
	ErrUnexpectedParameter = errors.New("unexpected parameter")
	ErrUnsupportedMethod   = errors.New("unsupported method")
	ErrDecodeResponse      = errors.New("cannot decode response")
)

// ParameterError reports a parameter set that does not match an operation's
// placeholders.
type ParameterError struct {
	Name     string
	Expected []string
	missing  bool
}

func (e *ParameterError) Error() string {
	if e.missing {
		return fmt.Sprintf("mandatory param %q not specified; mandatory params are [%s]", e.Name, strings.Join(e.Expected, ", "))
	}
	return fmt.Sprintf("param %q not recognised; mandatory params are [%s]", e.Name, strings.Join(e.Expected, ", "))
}

func (e *ParameterError) Is(target error) bool {
	if e.missing {
		return target == ErrMissingParameter
	}
	return target == ErrUnexpectedParameter
}

// UnsupportedMethodError reports a method the operation (or the client) cannot send.
type UnsupportedMethodError struct {
	Method  string
	Allowed []string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("method %q not implemented; available methods are [%s]", e.Method, strings.Join(e.Allowed, ", "))
}

func (e *UnsupportedMethodError) Is(target error) bool {
	return target == ErrUnsupportedMethod
}

// RestError is returned for any response with a status above 304. It is the base of
// RateLimitError and ServiceUnavailableError, which unwrap to it.
type RestError struct {
	StatusCode  int
	Label       string
	Description string
	// Cause is set when the status was synthesized from a transport failure.
	Cause error
}

func newRestError(code int, cause error) *RestError {
	desc := DescribeStatus(code)
	return &RestError{
		StatusCode:  code,
		Label:       desc.Label,
		Description: desc.Description,
		Cause:       cause,
	}
}

func (e *RestError) Error() string {
	msg := fmt.Sprintf("PDBe REST API returned a %d (%s), %s", e.StatusCode, e.Label, e.Description)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RestError) Unwrap() error {
	return e.Cause
}

// RateLimitError is returned for HTTP 429.
type RateLimitError struct {
	*RestError
	RateLimit  *NormalizedRateLimitInfo
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	msg := e.RestError.Error()
	if e.RetryAfter > 0 {
		// rounded up so a sub-second wait never reads as 0
		secs := int64((e.RetryAfter + time.Second - 1) / time.Second)
		msg = fmt.Sprintf("%s (Rate limit hit: %d seconds)", msg, secs)
	}
	return msg
}

func (e *RateLimitError) Unwrap() error {
	return e.RestError
}

// ServiceUnavailableError is returned for any status above 500.
type ServiceUnavailableError struct {
	*RestError
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.RestError
}

// IsRateLimitError reports whether err is (or wraps) a RateLimitError.
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsServiceUnavailable reports whether err is (or wraps) a ServiceUnavailableError.
func IsServiceUnavailable(err error) bool {
	var su *ServiceUnavailableError
	return errors.As(err, &su)
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not a RestError.
func StatusCode(err error) int {
	var re *RestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
