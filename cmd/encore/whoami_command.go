package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account the configured token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient()
			if err != nil {
				return err
			}
			principal, err := client.WhoAmI(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account: %s (%s)\n", principal.Name, principal.ID)
			if principal.Role != "" {
				fmt.Fprintf(out, "Role: %s\n", principal.Role)
			}
			if principal.Blocked {
				fmt.Fprintln(out, "This account is currently blocked from submitting.")
			}
			return nil
		},
	}
}
