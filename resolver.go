package pdbebridge

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/opengovern/pdbe-bridge/registry"
)

// Params are the named parameters of one call. Keys must be exactly the operation's
// placeholders, plus the optional reserved "method" key.
type Params map[string]any

// ResolvedCall is a validated call ready to be sent.
type ResolvedCall struct {
	URL         string
	Path        string
	Method      string
	Body        string
	ContentType string
}

// Resolver turns a descriptor and a parameter set into a ResolvedCall.
type Resolver struct {
	BaseURL       string
	DefaultMethod string
}

// Resolve validates params against desc and builds the request target.
// GET calls fill the placeholders in; POST calls blank them and send the body
// parameter's value instead. The resolved path is re-quoted: reserved characters such
// as '&', '=', ':' and '/' pass through, bytes that may not appear in a URL are
// percent-encoded.
func (r *Resolver) Resolve(desc registry.Descriptor, params Params) (*ResolvedCall, error) {
	required := desc.Required()

	for _, name := range required {
		if _, ok := params[name]; !ok {
			return nil, &ParameterError{Name: name, Expected: required, missing: true}
		}
	}

	unexpected := make([]string, 0)
	for name := range params {
		if name != registry.MethodParam && !contains(required, name) {
			unexpected = append(unexpected, name)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, &ParameterError{Name: unexpected[0], Expected: required}
	}

	method := r.DefaultMethod
	if v, ok := params[registry.MethodParam]; ok {
		method = fmt.Sprint(v)
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}

	if (method != http.MethodGet && method != http.MethodPost) || !desc.Allows(method) {
		return nil, &UnsupportedMethodError{Method: method, Allowed: append([]string(nil), desc.Methods...)}
	}

	call := &ResolvedCall{
		Method:      method,
		ContentType: desc.ContentType,
	}
	switch method {
	case http.MethodGet:
		call.Path = registry.Substitute(desc.URL, func(name string) string {
			return paramString(params[name])
		})
	case http.MethodPost:
		call.Path = registry.Substitute(desc.URL, func(string) string { return "" })
		if name := desc.BodyParameter(); name != "" {
			call.Body = paramString(params[name])
		}
	}
	call.Path = requoteURI(call.Path)
	call.URL = r.BaseURL + call.Path
	return call, nil
}

// requoteURI percent-encodes every byte outside the unreserved and reserved sets of
// RFC 3986. Existing %XX escapes are kept; a stray '%' becomes %25.
func requoteURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(c)
		case c != '%' && keepInURI(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~!#$&'()*+,/:;=?@[]", c) >= 0
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// paramString renders a parameter value. Slices of ids are comma-joined so a batch
// POST can be written as []string{"1cbs", "2pah"}.
func paramString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
