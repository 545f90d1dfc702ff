package pdbebridge

import (
	"strings"
	"time"

	"github.com/opengovern/pdbe-bridge/internal"
)

// NormalizedRequest is one fully resolved HTTP call handed to a Transport.
type NormalizedRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// NormalizedResponse is what a Transport hands back. Header keys are lower-cased.
type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string
	Data       []byte

	// Err is the transport failure a synthetic response was built from.
	Err error
}

// Header returns the value of a response header, case-insensitively.
func (r *NormalizedResponse) Header(key string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// NormalizedRateLimitInfo is the rate limit state advertised by the server in the
// X-RateLimit-* and Retry-After headers.
type NormalizedRateLimitInfo struct {
	MaxRequests       *int
	RemainingRequests *int
	ResetRequestsAt   *int64 // unix milliseconds
}

// ResetIn returns how long until the advertised reset, or 0 if unknown or passed.
func (i *NormalizedRateLimitInfo) ResetIn(now time.Time) time.Duration {
	if i == nil || i.ResetRequestsAt == nil || !internal.IsInFuture(*i.ResetRequestsAt, now) {
		return 0
	}
	return time.Duration(*i.ResetRequestsAt-now.UnixMilli()) * time.Millisecond
}

// Result is the outcome of a successful call.
type Result struct {
	StatusCode int
	// Data is the decoded JSON body; nil for an empty body.
	Data any
	// Text is Data rendered as indented JSON with sorted keys. It is only set when
	// the client pretty-prints responses.
	Text string
}

// String returns Text when set, otherwise the compact JSON form of Data.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	if r.Text != "" {
		return r.Text
	}
	b, err := marshalJSON(r.Data, false)
	if err != nil {
		return ""
	}
	return string(b)
}
