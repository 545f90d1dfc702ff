package mock

import (
	"errors"
	"sync"
	"time"

	pdbebridge "github.com/opengovern/pdbe-bridge"
)

// ErrConnectionRefused is the failure a Transport returns when FailWith is unset but
// Fail is true.
var ErrConnectionRefused = errors.New("mock: connection refused")

// Response is one scripted reply.
type Response struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// Transport is a scripted pdbebridge.Transport that records every request it sees.
//
// Replies are taken from Responses in order; once they run out, Default is used
// (200 with an empty JSON object when Default is zero). When RequestsUntilRateLimit is
// positive, every request past that count gets a 429. Delay holds every request in
// flight for that long, in real time, before it is answered.
type Transport struct {
	Responses              []Response
	Default                Response
	RequestsUntilRateLimit int
	Fail                   bool
	FailWith               error
	RateLimitInfo          *pdbebridge.NormalizedRateLimitInfo
	Delay                  time.Duration

	mu       sync.Mutex
	requests []*pdbebridge.NormalizedRequest
}

func (m *Transport) ExecuteRequest(req *pdbebridge.NormalizedRequest) (*pdbebridge.NormalizedResponse, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *req
	copied.Body = append([]byte(nil), req.Body...)
	m.requests = append(m.requests, &copied)

	if m.Fail || m.FailWith != nil {
		if m.FailWith != nil {
			return nil, m.FailWith
		}
		return nil, ErrConnectionRefused
	}

	if m.RequestsUntilRateLimit > 0 && len(m.requests) > m.RequestsUntilRateLimit {
		return toNormalized(Response{StatusCode: 429, Body: `{"error":"Rate limited"}`}), nil
	}

	resp := m.Default
	if len(m.Responses) > 0 {
		resp = m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = 200
		if resp.Body == "" {
			resp.Body = `{}`
		}
	}
	return toNormalized(resp), nil
}

func (m *Transport) ParseRateLimitInfo(resp *pdbebridge.NormalizedResponse) (*pdbebridge.NormalizedRateLimitInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RateLimitInfo, nil
}

// Requests returns the requests received so far.
func (m *Transport) Requests() []*pdbebridge.NormalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pdbebridge.NormalizedRequest(nil), m.requests...)
}

// RequestCount returns how many requests reached the transport.
func (m *Transport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil.
func (m *Transport) LastRequest() *pdbebridge.NormalizedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func toNormalized(r Response) *pdbebridge.NormalizedResponse {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = v
	}
	return &pdbebridge.NormalizedResponse{
		StatusCode: r.StatusCode,
		Headers:    headers,
		Data:       []byte(r.Body),
	}
}
