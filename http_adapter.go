package pdbebridge

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"

	"github.com/opengovern/pdbe-bridge/internal"
)

// TransportOptions are the pass-through config options the HTTP adapter understands.
type TransportOptions struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	IdleConnTimeout    time.Duration `mapstructure:"idle_conn_timeout"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	DisableKeepAlives  bool          `mapstructure:"disable_keep_alives"`
}

// HTTPAdapter is the default Transport. It keeps one http.Client for the lifetime of
// the client so connections are reused, and applies the session headers to every
// request before the per-request ones.
type HTTPAdapter struct {
	client  *http.Client
	headers map[string]string
	logger  hclog.Logger
	now     func() time.Time
}

// NewHTTPAdapter builds the transport from a client config. Unknown keys in
// cfg.Options are logged and ignored.
func NewHTTPAdapter(cfg *ClientConfig, logger hclog.Logger) (*HTTPAdapter, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	opts, err := decodeTransportOptions(cfg.Options, logger)
	if err != nil {
		return nil, err
	}

	proxies := make(map[string]*url.URL, len(cfg.Proxies))
	for scheme, raw := range cfg.Proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s proxy %q: %w", scheme, raw, err)
		}
		proxies[scheme] = u
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(proxies)
	transport.DisableKeepAlives = opts.DisableKeepAlives
	if opts.MaxIdleConns > 0 {
		transport.MaxIdleConns = opts.MaxIdleConns
	}
	if opts.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = opts.IdleConnTimeout
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &HTTPAdapter{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		headers: cfg.Headers,
		logger:  logger.Named("http"),
		now:     time.Now,
	}, nil
}

func decodeTransportOptions(raw map[string]any, logger hclog.Logger) (TransportOptions, error) {
	var opts TransportOptions
	if len(raw) == 0 {
		return opts, nil
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Metadata:         &md,
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("decoding transport options: %w", err)
	}
	for _, key := range md.Unused {
		logger.Warn("ignoring unknown transport option", "option", key)
	}
	return opts, nil
}

func proxyFunc(proxies map[string]*url.URL) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		if u, ok := proxies[req.URL.Scheme]; ok {
			return u, nil
		}
		if u, ok := proxies["all"]; ok {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}
}

func (h *HTTPAdapter) ExecuteRequest(req *NormalizedRequest) (*NormalizedResponse, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequest(req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range h.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}

	h.logger.Trace("response received", "method", req.Method, "url", req.URL, "status", resp.StatusCode, "bytes", len(data))
	return &NormalizedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Data:       data,
	}, nil
}

// ParseRateLimitInfo reads the X-RateLimit-* headers. Retry-After, when present and
// later than X-RateLimit-Reset, wins. It returns nil when no header is present.
func (h *HTTPAdapter) ParseRateLimitInfo(resp *NormalizedResponse) (*NormalizedRateLimitInfo, error) {
	return parseRateLimitHeaders(resp, h.now())
}

func parseRateLimitHeaders(resp *NormalizedResponse, now time.Time) (*NormalizedRateLimitInfo, error) {
	if resp == nil {
		return nil, nil
	}
	parseInt := func(key string) *int {
		if val := resp.Header(key); val != "" {
			if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				return &i
			}
		}
		return nil
	}

	info := &NormalizedRateLimitInfo{
		MaxRequests:       parseInt("x-ratelimit-limit"),
		RemainingRequests: parseInt("x-ratelimit-remaining"),
	}
	if at, ok := internal.ParseResetAt(resp.Header("x-ratelimit-reset"), now); ok {
		info.ResetRequestsAt = &at
	}
	if at, ok := internal.ParseResetAt(resp.Header("retry-after"), now); ok {
		if info.ResetRequestsAt == nil || at > *info.ResetRequestsAt {
			info.ResetRequestsAt = &at
		}
	}

	if info.MaxRequests == nil && info.RemainingRequests == nil && info.ResetRequestsAt == nil {
		return nil, nil
	}
	return info, nil
}
