package pdbebridge

import "time"

// Transport sends a NormalizedRequest over the wire. A returned error means no HTTP
// status was received (connection refused, DNS failure, timeout).
type Transport interface {
	ExecuteRequest(req *NormalizedRequest) (*NormalizedResponse, error)
	ParseRateLimitInfo(resp *NormalizedResponse) (*NormalizedRateLimitInfo, error)
}

// Clock is the time source of the rate limiter.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
