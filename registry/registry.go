// registry.go
// -----------
// Package registry holds the static endpoint table the client is generated from:
// group name -> operation name -> Descriptor. A Registry is validated once when it is
// built and never changes afterwards, so it can be shared freely between clients.
//
// The placeholder set of a descriptor's URL template is the only source of truth for
// its required parameters; construction rejects any descriptor whose declared params
// drift from its template.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// DefaultContentType is used for descriptors that do not declare one.
const DefaultContentType = "application/json"

// MethodParam is the reserved parameter name that overrides the HTTP method of a call.
const MethodParam = "method"

// DefaultBodyParams are the identifier-style parameters that carry the POST body when a
// descriptor does not name one explicitly. The first one present wins.
var DefaultBodyParams = []string{"pdbid", "compid"}

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z_]+)\}\}`)

var (
	ErrUnknownGroup     = errors.New("unknown endpoint group")
	ErrUnknownOperation = errors.New("unknown endpoint operation")
	ErrInvalidRegistry  = errors.New("invalid endpoint registry")
)

// LookupError reports a group or operation that is not in the registry.
type LookupError struct {
	Group        string
	Operation    string
	GroupMissing bool
}

func (e *LookupError) Error() string {
	if e.GroupMissing {
		return fmt.Sprintf("no such group %q", e.Group)
	}
	return fmt.Sprintf("no such operation %q in group %q", e.Operation, e.Group)
}

func (e *LookupError) Is(target error) bool {
	if e.GroupMissing {
		return target == ErrUnknownGroup
	}
	return target == ErrUnknownOperation
}

// Descriptor describes one remote operation.
type Descriptor struct {
	URL         string   `yaml:"url"`
	Methods     []string `yaml:"methods"`
	ContentType string   `yaml:"content_type"`
	Params      []string `yaml:"params"`
	BodyParam   string   `yaml:"body_param"`
	Doc         string   `yaml:"doc"`
}

// Required returns the placeholder names of the URL template, in template order.
func (d Descriptor) Required() []string {
	return Placeholders(d.URL)
}

// Allows reports whether method (any case) is one of the descriptor's methods.
func (d Descriptor) Allows(method string) bool {
	method = strings.ToUpper(method)
	for _, m := range d.Methods {
		if m == method {
			return true
		}
	}
	return false
}

// BodyParameter returns the parameter whose value becomes the POST body, or "" if the
// descriptor has none.
func (d Descriptor) BodyParameter() string {
	if d.BodyParam != "" {
		return d.BodyParam
	}
	required := d.Required()
	for _, name := range DefaultBodyParams {
		for _, r := range required {
			if r == name {
				return name
			}
		}
	}
	return ""
}

func (d Descriptor) clone() Descriptor {
	c := d
	c.Methods = append([]string(nil), d.Methods...)
	c.Params = append([]string(nil), d.Params...)
	return c
}

// ParamDoc documents a parameter name shared across operations.
type ParamDoc struct {
	Type    string   `yaml:"type"`
	Doc     string   `yaml:"doc"`
	Allowed []string `yaml:"allowed"`
}

// Placeholders extracts the {{name}} placeholders of a URL template, de-duplicated and
// in order of first appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Substitute replaces every placeholder of template with fn(name).
func Substitute(template string, fn func(name string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		return fn(placeholderPattern.FindStringSubmatch(match)[1])
	})
}

// Registry is the immutable group -> operation -> Descriptor table.
type Registry struct {
	groups map[string]map[string]Descriptor
	params map[string]ParamDoc
}

// New builds a Registry from the given tables. Methods are upper-cased and an empty
// content type defaults to DefaultContentType. Every descriptor is validated and all
// problems are reported together. When params is non-empty, each placeholder must be
// documented in it.
func New(groups map[string]map[string]Descriptor, params map[string]ParamDoc) (*Registry, error) {
	r := &Registry{
		groups: make(map[string]map[string]Descriptor, len(groups)),
		params: make(map[string]ParamDoc, len(params)),
	}
	for name, p := range params {
		p.Allowed = append([]string(nil), p.Allowed...)
		r.params[name] = p
	}

	var result *multierror.Error
	if len(groups) == 0 {
		result = multierror.Append(result, errors.New("no endpoint groups defined"))
	}

	for _, group := range sortedKeys(groups) {
		ops := groups[group]
		if len(ops) == 0 {
			result = multierror.Append(result, fmt.Errorf("group %s: no operations defined", group))
		}
		normalized := make(map[string]Descriptor, len(ops))
		for _, op := range sortedKeys(ops) {
			d := ops[op].clone()
			for i, m := range d.Methods {
				d.Methods[i] = strings.ToUpper(strings.TrimSpace(m))
			}
			if d.ContentType == "" {
				d.ContentType = DefaultContentType
			}
			for _, err := range validateDescriptor(d, r.params) {
				result = multierror.Append(result, fmt.Errorf("%s.%s: %w", group, op, err))
			}
			normalized[op] = d
		}
		r.groups[group] = normalized
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, err)
	}
	return r, nil
}

func validateDescriptor(d Descriptor, params map[string]ParamDoc) []error {
	var errs []error
	if d.URL == "" {
		errs = append(errs, errors.New("url template is empty"))
	}

	if len(d.Methods) == 0 {
		errs = append(errs, errors.New("no methods declared"))
	}
	for _, m := range d.Methods {
		if m != "GET" && m != "POST" {
			errs = append(errs, fmt.Errorf("unsupported method %q", m))
		}
	}

	required := d.Required()
	if !sameSet(required, d.Params) {
		errs = append(errs, fmt.Errorf("declared params %v do not match url placeholders %v", d.Params, required))
	}
	if len(params) > 0 {
		for _, name := range required {
			if _, ok := params[name]; !ok {
				errs = append(errs, fmt.Errorf("placeholder %q has no parameter documentation", name))
			}
		}
	}

	if d.BodyParam != "" && !contains(required, d.BodyParam) {
		errs = append(errs, fmt.Errorf("body_param %q is not a url placeholder", d.BodyParam))
	}
	if d.Allows("POST") && d.BodyParameter() == "" {
		errs = append(errs, errors.New("POST declared but no parameter carries the request body"))
	}
	return errs
}

// Groups returns the sorted group names.
func (r *Registry) Groups() []string {
	return sortedKeys(r.groups)
}

// Operations returns the sorted operation names of group.
func (r *Registry) Operations(group string) ([]string, error) {
	ops, ok := r.groups[group]
	if !ok {
		return nil, &LookupError{Group: group, GroupMissing: true}
	}
	return sortedKeys(ops), nil
}

// Descriptor returns a copy of the descriptor for group.operation.
func (r *Registry) Descriptor(group, operation string) (Descriptor, error) {
	ops, ok := r.groups[group]
	if !ok {
		return Descriptor{}, &LookupError{Group: group, Operation: operation, GroupMissing: true}
	}
	d, ok := ops[operation]
	if !ok {
		return Descriptor{}, &LookupError{Group: group, Operation: operation}
	}
	return d.clone(), nil
}

// Param returns the shared documentation for a parameter name.
func (r *Registry) Param(name string) (ParamDoc, bool) {
	p, ok := r.params[name]
	if ok {
		p.Allowed = append([]string(nil), p.Allowed...)
	}
	return p, ok
}

// Len returns the total number of operations across all groups.
func (r *Registry) Len() int {
	n := 0
	for _, ops := range r.groups {
		n += len(ops)
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameSet(a, b []string) bool {
	as := make(map[string]bool, len(a))
	for _, s := range a {
		as[s] = true
	}
	bs := make(map[string]bool, len(b))
	for _, s := range b {
		bs[s] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for s := range as {
		if !bs[s] {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
