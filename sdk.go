// sdk.go
// ------
// The sdk.go file contains the Client facade, the main entry point of the SDK.
//
// A Client is generated once from a registry.Registry: every group of the registry
// becomes a Group namespace and every operation an Operation bound to the client's
// RequestExecutor. Nothing is synthesized at call time; Call, Group and Operation are
// plain map lookups.
//
// Each Client owns its own rate limiter, transport and last-response state; two
// clients never share counters.
package pdbebridge

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/opengovern/pdbe-bridge/registry"
)

type Client struct {
	registry    *registry.Registry
	config      *ClientConfig
	groups      map[string]*Group
	executor    *RequestExecutor
	rateLimiter *RateLimiter
}

// Option customizes a Client at construction.
type Option func(*clientOptions)

type clientOptions struct {
	transport Transport
	clock     Clock
	logger    hclog.Logger
}

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithClock replaces the wall clock used by the rate limiter.
func WithClock(c Clock) Option {
	return func(o *clientOptions) { o.clock = c }
}

// WithLogger sets the logger. The default discards everything until SetDebug(true).
func WithLogger(l hclog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// NewClient builds a client for every group and operation in reg. A nil cfg uses the
// defaults; a nil reg uses registry.Default().
func NewClient(reg *registry.Registry, cfg *ClientConfig, opts ...Option) (*Client, error) {
	if reg == nil {
		reg = registry.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	resolved := cfg.withDefaults()

	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = hclog.NewNullLogger()
	}
	if o.clock == nil {
		o.clock = realClock{}
	}
	if o.transport == nil {
		adapter, err := NewHTTPAdapter(resolved, o.logger)
		if err != nil {
			return nil, err
		}
		o.transport = adapter
	}

	c := &Client{
		registry:    reg,
		config:      resolved,
		groups:      make(map[string]*Group),
		rateLimiter: NewRateLimiter(resolved.MaxRequestsPerSecond, o.clock),
	}
	resolver := &Resolver{BaseURL: resolved.BaseURL, DefaultMethod: resolved.Method}
	c.executor = NewRequestExecutor(reg, resolver, c.rateLimiter, o.transport, o.clock, o.logger)
	c.executor.setPretty(*resolved.PrettyJSON)

	for _, groupName := range reg.Groups() {
		ops, err := reg.Operations(groupName)
		if err != nil {
			return nil, err
		}
		g := &Group{name: groupName, operations: make(map[string]*Operation, len(ops))}
		for _, opName := range ops {
			desc, err := reg.Descriptor(groupName, opName)
			if err != nil {
				return nil, err
			}
			g.operations[opName] = c.bind(groupName, opName, desc)
		}
		c.groups[groupName] = g
	}

	c.debugf("client ready", "base_url", resolved.BaseURL, "groups", len(c.groups), "operations", reg.Len())
	return c, nil
}

func (c *Client) bind(group, name string, desc registry.Descriptor) *Operation {
	params := make(map[string]registry.ParamDoc)
	for _, p := range desc.Required() {
		if doc, ok := c.registry.Param(p); ok {
			params[p] = doc
		}
	}
	return &Operation{
		group:      group,
		name:       name,
		descriptor: desc,
		params:     params,
		call: func(p Params) (*Result, error) {
			return c.executor.Execute(group, name, p)
		},
	}
}

// Call invokes group.operation with params. It is the generic form of
// Group(group).Operation(operation).Call(params).
func (c *Client) Call(group, operation string, params Params) (*Result, error) {
	return c.executor.Execute(group, operation, params)
}

// Groups returns the sorted group names.
func (c *Client) Groups() []string {
	names := make([]string, 0, len(c.groups))
	for name := range c.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group returns the namespace of a group.
func (c *Client) Group(name string) (*Group, error) {
	g, ok := c.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEndpoint, &registry.LookupError{Group: name, GroupMissing: true})
	}
	return g, nil
}

// Operation returns one bound operation.
func (c *Client) Operation(group, name string) (*Operation, error) {
	g, err := c.Group(group)
	if err != nil {
		return nil, err
	}
	return g.Operation(name)
}

// Endpoints lists the available groups in human readable form.
func (c *Client) Endpoints() string {
	return formatEndpoints(c.Groups())
}

// LastResponse returns the response of the most recent dispatched call, or nil.
func (c *Client) LastResponse() *NormalizedResponse {
	return c.executor.LastResponse()
}

func (c *Client) RateLimitStats() RateLimitStats {
	return c.rateLimiter.Stats()
}

func (c *Client) BaseURL() string  { return c.config.BaseURL }
func (c *Client) Method() string   { return c.config.Method }
func (c *Client) Version() string  { return Version }
func (c *Client) PrettyJSON() bool { return c.executor.isPretty() }

// Headers returns a copy of the session headers.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.config.Headers))
	for k, v := range c.config.Headers {
		out[k] = v
	}
	return out
}

// SetPrettyJSON toggles rendering of successful responses as indented JSON text.
func (c *Client) SetPrettyJSON(pretty bool) {
	c.executor.setPretty(pretty)
}

// SetDebug enables or disables debug logging to stderr.
func (c *Client) SetDebug(enabled bool) {
	if enabled {
		c.executor.setLogger(hclog.New(&hclog.LoggerOptions{
			Name:   "pdbe-bridge",
			Level:  hclog.Debug,
			Output: os.Stderr,
		}))
		return
	}
	c.executor.setLogger(hclog.NewNullLogger())
}

func (c *Client) debugf(msg string, args ...interface{}) {
	c.executor.getLogger().Debug(msg, args...)
}

// Group is the namespace of one registry group.
type Group struct {
	name       string
	operations map[string]*Operation
}

func (g *Group) Name() string { return g.name }

// Operations returns the sorted operation names.
func (g *Group) Operations() []string {
	names := make([]string, 0, len(g.operations))
	for name := range g.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Group) Operation(name string) (*Operation, error) {
	op, ok := g.operations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnknownEndpoint, &registry.LookupError{Group: g.name, Operation: name})
	}
	return op, nil
}

func (g *Group) Endpoints() string {
	return formatEndpoints(g.Operations())
}

// Operation is one callable endpoint. Its accessors mirror the registry descriptor.
type Operation struct {
	group      string
	name       string
	descriptor registry.Descriptor
	params     map[string]registry.ParamDoc
	call       func(Params) (*Result, error)
}

func (o *Operation) Call(params Params) (*Result, error) {
	return o.call(params)
}

func (o *Operation) Name() string        { return o.name }
func (o *Operation) Group() string       { return o.group }
func (o *Operation) URL() string         { return o.descriptor.URL }
func (o *Operation) Doc() string         { return o.descriptor.Doc }
func (o *Operation) ContentType() string { return o.descriptor.ContentType }
func (o *Operation) BodyParam() string   { return o.descriptor.BodyParameter() }
func (o *Operation) Required() []string  { return o.descriptor.Required() }

func (o *Operation) Methods() []string {
	return append([]string(nil), o.descriptor.Methods...)
}

// Params returns the documentation of every parameter of the operation, keyed by name.
func (o *Operation) Params() map[string]registry.ParamDoc {
	out := make(map[string]registry.ParamDoc, len(o.params))
	for k, v := range o.params {
		out[k] = v
	}
	return out
}

// Param returns the documentation of one of the operation's parameters.
func (o *Operation) Param(name string) (registry.ParamDoc, bool) {
	p, ok := o.params[name]
	return p, ok
}

// Descriptor returns a copy of the registry entry the operation was built from.
func (o *Operation) Descriptor() registry.Descriptor {
	d := o.descriptor
	d.Methods = append([]string(nil), d.Methods...)
	d.Params = append([]string(nil), d.Params...)
	return d
}

func formatEndpoints(names []string) string {
	return "The following endpoints are available:\n    " + strings.Join(names, "\n    ")
}
