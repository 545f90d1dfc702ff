// Package cli implements the pdbe command: a thin shell over the client that lists
// the endpoint table, describes operations and calls them.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pdbebridge "github.com/opengovern/pdbe-bridge"
	"github.com/opengovern/pdbe-bridge/registry"
)

type rootFlags struct {
	configPath   string
	registryPath string
	baseURL      string
	compact      bool
	debug        bool
	noColor      bool
}

type app struct {
	flags rootFlags
	opts  []pdbebridge.Option
}

// NewRoot builds the top-level pdbe command. opts are handed to every client it
// builds.
//
// Errors and usage are silent; main decides how to print them.
func NewRoot(opts ...pdbebridge.Option) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:           "pdbe",
		Short:         "Query the PDBe REST API",
		Version:       pdbebridge.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "HCL client configuration file")
	pf.StringVar(&a.flags.registryPath, "registry", "", "alternate YAML endpoint table")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "API root (default "+pdbebridge.DefaultBaseURL+")")
	pf.BoolVar(&a.flags.compact, "compact", false, "print compact JSON")
	pf.BoolVar(&a.flags.debug, "debug", false, "log requests to stderr")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "never highlight output")

	root.AddCommand(
		a.newGroupsCmd(),
		a.newOperationsCmd(),
		a.newDescribeCmd(),
		a.newCallCmd(),
	)
	return root
}

// client builds a client from the config file and flags. Flags win over the file.
func (a *app) client(cmd *cobra.Command) (*pdbebridge.Client, error) {
	cfg := &pdbebridge.ClientConfig{}
	if a.flags.configPath != "" {
		loaded, err := LoadConfigFile(a.flags.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = a.flags.baseURL
	}
	if a.flags.compact {
		pretty := false
		cfg.PrettyJSON = &pretty
	}

	var reg *registry.Registry
	if a.flags.registryPath != "" {
		loaded, err := registry.LoadFile(a.flags.registryPath)
		if err != nil {
			return nil, err
		}
		reg = loaded
	}

	client, err := pdbebridge.NewClient(reg, cfg, a.opts...)
	if err != nil {
		return nil, err
	}
	if a.flags.debug {
		client.SetDebug(true)
	}
	return client, nil
}

// ExitCode maps an error returned by the root command to a process exit status:
// 2 for calls rejected before anything was sent, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pdbebridge.ErrMissingParameter),
		errors.Is(err, pdbebridge.ErrUnexpectedParameter),
		errors.Is(err, pdbebridge.ErrUnsupportedMethod),
		errors.Is(err, pdbebridge.ErrUnknownEndpoint),
		errors.Is(err, errUsage):
		return 2
	}
	return 1
}

var errUsage = errors.New("usage")

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
