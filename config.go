// config.go
// ----------
// This file defines ClientConfig, the construction-time options of a Client: the API
// root, extra or overriding headers, outbound proxies, the default HTTP method, whether
// responses are pretty-printed, and the per-second request ceiling.
//
// ConfigFromMap accepts a loosely typed option map (as read from a file or flags).
// Keys it does not recognize are kept in Options and handed to the transport as-is.
package pdbebridge

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

const (
	Version            = "0.1.0"
	DefaultBaseURL     = "https://www.ebi.ac.uk/pdbe/"
	DefaultUserAgent   = "pdbe-bridge/" + Version
	DefaultContentType = "application/json"
)

type ClientConfig struct {
	BaseURL              string            `mapstructure:"base_url" validate:"omitempty,url"`
	Headers              map[string]string `mapstructure:"headers"`
	Proxies              map[string]string `mapstructure:"proxies" validate:"omitempty,dive,keys,oneof=http https all,endkeys,url"`
	Method               string            `mapstructure:"method" validate:"omitempty,oneof=GET POST"`
	PrettyJSON           *bool             `mapstructure:"pretty_json"`
	MaxRequestsPerSecond int               `mapstructure:"max_requests_per_second" validate:"gte=0"`

	// Options holds unrecognized keys, passed through to the transport untouched.
	Options map[string]any `mapstructure:"-"`
}

var configKeyAliases = map[string]string{
	"baseUrl":              "base_url",
	"prettyJson":           "pretty_json",
	"maxRequestsPerSecond": "max_requests_per_second",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ConfigFromMap decodes raw into a ClientConfig. Both snake_case and the camelCase
// spellings baseUrl/prettyJson are accepted.
func ConfigFromMap(raw map[string]any) (*ClientConfig, error) {
	normalized := make(map[string]any, len(raw))
	original := make(map[string]string, len(raw))
	for k, v := range raw {
		key := k
		if alias, ok := configKeyAliases[k]; ok {
			key = alias
		}
		normalized[key] = v
		original[key] = k
	}

	cfg := &ClientConfig{}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(normalized); err != nil {
		return nil, fmt.Errorf("decoding client config: %w", err)
	}

	if len(md.Unused) > 0 {
		cfg.Options = make(map[string]any, len(md.Unused))
		for _, key := range md.Unused {
			cfg.Options[original[key]] = normalized[key]
		}
	}
	return cfg, nil
}

// Validate checks the config after defaults are applied.
func (c *ClientConfig) Validate() error {
	resolved := c.withDefaults()
	err := validate.Struct(resolved)
	if err == nil {
		return nil
	}

	valErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var result *multierror.Error
	for _, fe := range valErrs {
		result = multierror.Append(result, fmt.Errorf("invalid %s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}

func (c *ClientConfig) withDefaults() *ClientConfig {
	out := &ClientConfig{}
	if c != nil {
		*out = *c
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	out.Method = strings.ToUpper(strings.TrimSpace(out.Method))
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	if out.PrettyJSON == nil {
		pretty := true
		out.PrettyJSON = &pretty
	}
	if out.MaxRequestsPerSecond == 0 {
		out.MaxRequestsPerSecond = DefaultMaxRequestsPerSecond
	}

	headers := map[string]string{
		"User-Agent":   DefaultUserAgent,
		"Content-Type": DefaultContentType,
	}
	for k, v := range out.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	out.Headers = headers

	proxies := make(map[string]string, len(out.Proxies))
	for k, v := range out.Proxies {
		proxies[strings.ToLower(k)] = v
	}
	out.Proxies = proxies

	options := make(map[string]any, len(out.Options))
	for k, v := range out.Options {
		options[k] = v
	}
	out.Options = options
	return out
}
