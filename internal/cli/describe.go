package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	pdbebridge "github.com/opengovern/pdbe-bridge"
)

func (a *app) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe GROUP OPERATION",
		Short: "Show the url, methods and parameters of an operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			op, err := client.Operation(args[0], args[1])
			if err != nil {
				return err
			}
			writeDescription(cmd.OutOrStdout(), op)
			return nil
		},
	}
}

func writeDescription(w io.Writer, op *pdbebridge.Operation) {
	fmt.Fprintf(w, "%s.%s\n", op.Group(), op.Name())
	fmt.Fprintf(w, "  url:          %s\n", op.URL())
	fmt.Fprintf(w, "  methods:      %s\n", strings.Join(op.Methods(), ", "))
	fmt.Fprintf(w, "  content type: %s\n", op.ContentType())
	if body := op.BodyParam(); body != "" {
		fmt.Fprintf(w, "  post body:    %s\n", body)
	}

	if required := op.Required(); len(required) > 0 {
		fmt.Fprintln(w, "  params:")
		for _, name := range required {
			doc, ok := op.Param(name)
			if !ok {
				fmt.Fprintf(w, "    %s\n", name)
				continue
			}
			fmt.Fprintf(w, "    %s (%s): %s\n", name, doc.Type, firstLine(doc.Doc))
			if len(doc.Allowed) > 0 {
				fmt.Fprintf(w, "      one of: %s\n", strings.Join(doc.Allowed, ", "))
			}
		}
	}

	if op.Doc() != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, op.Doc())
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
