package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the endpoint groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.Endpoints())
			return nil
		},
	}
}

func (a *app) newOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations GROUP",
		Short: "List the operations of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			group, err := client.Group(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), group.Endpoints())
			return nil
		},
	}
}
