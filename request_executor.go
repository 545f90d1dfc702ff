package pdbebridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/opengovern/pdbe-bridge/registry"
)

// RequestExecutor performs one call end to end: lookup, resolution, throttling,
// transport and classification of the status code. It never retries.
type RequestExecutor struct {
	registry    *registry.Registry
	resolver    *Resolver
	rateLimiter *RateLimiter
	transport   Transport
	clock       Clock

	mu           sync.Mutex
	prettyJSON   bool
	logger       hclog.Logger
	lastResponse *NormalizedResponse
}

func NewRequestExecutor(reg *registry.Registry, resolver *Resolver, limiter *RateLimiter, transport Transport, clock Clock, logger hclog.Logger) *RequestExecutor {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &RequestExecutor{
		registry:    reg,
		resolver:    resolver,
		rateLimiter: limiter,
		transport:   transport,
		clock:       clock,
		logger:      logger,
	}
}

// Execute runs group.operation with params. Parameter and method errors are returned
// before anything is sent; every dispatched call claims a slot in the rate limit window
// whatever its outcome.
func (re *RequestExecutor) Execute(group, operation string, params Params) (*Result, error) {
	logger := re.getLogger().With("group", group, "operation", operation)

	desc, err := re.registry.Descriptor(group, operation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEndpoint, err)
	}

	call, err := re.resolver.Resolve(desc, params)
	if err != nil {
		logger.Debug("rejected call", "error", err)
		return nil, err
	}
	logger.Debug("resolved url", "method", call.Method, "url", call.URL)

	if waited := re.rateLimiter.Throttle(); waited > 0 {
		logger.Debug("request window full, waited", "wait", waited)
	}

	resp := re.send(call, logger)
	re.setLastResponse(resp)

	result, err := re.classify(resp)
	if err != nil {
		logger.Debug("request failed", "status", resp.StatusCode, "error", err)
		return nil, err
	}
	logger.Debug("request succeeded", "status", resp.StatusCode)
	return result, nil
}

// send hands the call to the transport. A transport failure is turned into a
// synthetic 500 response so that classification has a single path.
func (re *RequestExecutor) send(call *ResolvedCall, logger hclog.Logger) *NormalizedResponse {
	req := &NormalizedRequest{
		Method:  call.Method,
		URL:     call.URL,
		Headers: map[string]string{"Content-Type": call.ContentType},
	}
	if call.Method == http.MethodPost {
		req.Body = []byte(call.Body)
		logger.Debug("submitting POST request", "url", call.URL, "data", call.Body)
	} else {
		logger.Debug("submitting GET request", "url", call.URL)
	}

	resp, err := re.transport.ExecuteRequest(req)
	if err != nil || resp == nil {
		logger.Warn("transport failure, treating as status 500", "url", call.URL, "error", err)
		return &NormalizedResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{},
			Err:        err,
		}
	}
	return resp
}

func (re *RequestExecutor) classify(resp *NormalizedResponse) (*Result, error) {
	if resp.StatusCode > http.StatusNotModified {
		restErr := newRestError(resp.StatusCode, resp.Err)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			rl := &RateLimitError{RestError: restErr}
			if info, err := re.transport.ParseRateLimitInfo(resp); err == nil && info != nil {
				rl.RateLimit = info
				rl.RetryAfter = info.ResetIn(re.clock.Now())
			}
			return nil, rl
		case resp.StatusCode > http.StatusInternalServerError:
			return nil, &ServiceUnavailableError{RestError: restErr}
		}
		return nil, restErr
	}

	result := &Result{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(resp.Data)) > 0 {
		if err := json.Unmarshal(resp.Data, &result.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
		}
	}

	if re.isPretty() && result.Data != nil {
		b, err := marshalJSON(result.Data, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
		}
		result.Text = string(b)
	}
	return result, nil
}

// marshalJSON renders v with map keys sorted; indented output uses four spaces.
func marshalJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", strings.Repeat(" ", 4))
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (re *RequestExecutor) setLastResponse(resp *NormalizedResponse) {
	re.mu.Lock()
	defer re.mu.Unlock()
	re.lastResponse = resp
}

func (re *RequestExecutor) LastResponse() *NormalizedResponse {
	re.mu.Lock()
	defer re.mu.Unlock()
	return re.lastResponse
}

func (re *RequestExecutor) setPretty(pretty bool) {
	re.mu.Lock()
	defer re.mu.Unlock()
	re.prettyJSON = pretty
}

func (re *RequestExecutor) isPretty() bool {
	re.mu.Lock()
	defer re.mu.Unlock()
	return re.prettyJSON
}

func (re *RequestExecutor) setLogger(logger hclog.Logger) {
	re.mu.Lock()
	defer re.mu.Unlock()
	re.logger = logger
}

func (re *RequestExecutor) getLogger() hclog.Logger {
	re.mu.Lock()
	defer re.mu.Unlock()
	return re.logger
}
