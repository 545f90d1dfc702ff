package cli

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	pdbebridge "github.com/opengovern/pdbe-bridge"
)

// FileConfig is the HCL form of a client configuration:
//
//	base_url    = "https://www.ebi.ac.uk/pdbe/"
//	method      = "GET"
//	pretty_json = true
//	headers     = { "User-Agent" = "my-pipeline/1.0" }
//	proxies     = { https = "http://proxy.local:3128" }
//
//	transport {
//	  timeout = "30s"
//	}
type FileConfig struct {
	BaseURL              *string           `hcl:"base_url,optional"`
	Method               *string           `hcl:"method,optional"`
	PrettyJSON           *bool             `hcl:"pretty_json,optional"`
	MaxRequestsPerSecond *int              `hcl:"max_requests_per_second,optional"`
	Headers              map[string]string `hcl:"headers,optional"`
	Proxies              map[string]string `hcl:"proxies,optional"`
	Transport            *TransportBlock   `hcl:"transport,block"`
}

// TransportBlock carries the options the HTTP transport understands.
type TransportBlock struct {
	Timeout            *string `hcl:"timeout,optional"`
	IdleConnTimeout    *string `hcl:"idle_conn_timeout,optional"`
	MaxIdleConns       *int    `hcl:"max_idle_conns,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
	DisableKeepAlives  *bool   `hcl:"disable_keep_alives,optional"`
}

// LoadConfigFile decodes an HCL file into a client config. The result is validated.
func LoadConfigFile(filename string) (*pdbebridge.ClientConfig, error) {
	var fc FileConfig
	if err := hclsimple.DecodeFile(filename, nil, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	cfg := fc.ClientConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// ClientConfig converts the file form into a pdbebridge.ClientConfig. Transport
// settings travel in Options.
func (fc *FileConfig) ClientConfig() *pdbebridge.ClientConfig {
	cfg := &pdbebridge.ClientConfig{
		Headers:    fc.Headers,
		Proxies:    fc.Proxies,
		PrettyJSON: fc.PrettyJSON,
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.Method != nil {
		cfg.Method = *fc.Method
	}
	if fc.MaxRequestsPerSecond != nil {
		cfg.MaxRequestsPerSecond = *fc.MaxRequestsPerSecond
	}

	if t := fc.Transport; t != nil {
		opts := map[string]any{}
		if t.Timeout != nil {
			opts["timeout"] = *t.Timeout
		}
		if t.IdleConnTimeout != nil {
			opts["idle_conn_timeout"] = *t.IdleConnTimeout
		}
		if t.MaxIdleConns != nil {
			opts["max_idle_conns"] = *t.MaxIdleConns
		}
		if t.InsecureSkipVerify != nil {
			opts["insecure_skip_verify"] = *t.InsecureSkipVerify
		}
		if t.DisableKeepAlives != nil {
			opts["disable_keep_alives"] = *t.DisableKeepAlives
		}
		if len(opts) > 0 {
			cfg.Options = opts
		}
	}
	return cfg
}
