package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	pdbebridge "github.com/opengovern/pdbe-bridge"
	"github.com/opengovern/pdbe-bridge/registry"
)

func (a *app) newCallCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "call GROUP OPERATION [name=value...]",
		Short: "Call an operation and print the JSON response",
		Example: `  pdbe call PDB getSummary pdbid=1cbs
  pdbe call PDB getSummary pdbid=1cbs,2pah --method POST
  pdbe call PISA getAssemblyComponent pdbid=3gcb assemblyid=0 assembly_index=1 assembly_component=energetics`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}
			if method != "" {
				params[registry.MethodParam] = method
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			result, err := client.Call(args[0], args[1], params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			text := result.String()
			if a.colorize(out) {
				text = highlightJSON(text)
			}
			fmt.Fprintln(out, text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", "", "HTTP method (GET or POST)")
	return cmd
}

// parseParams turns name=value arguments into call parameters. A value may itself
// contain '='.
func parseParams(args []string) (pdbebridge.Params, error) {
	params := make(pdbebridge.Params, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, usageErrorf("parameter %q is not of the form name=value", arg)
		}
		if _, dup := params[name]; dup {
			return nil, usageErrorf("parameter %q given twice", name)
		}
		params[name] = value
	}
	return params, nil
}

func (a *app) colorize(w io.Writer) bool {
	if a.flags.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
