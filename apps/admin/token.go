package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/fyp/apps/api/echo"
)

func (cli *commandLine) tokenCmd() *cobra.Command {
	var subject, role, department string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token for a coordinator, supervisor or student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := echoapi.NewClaims(cli.conf, subject, role, department)
			if err := claims.Valid(); err != nil {
				return errors.Wrap(err, "invalid claims")
			}
			token, err := echoapi.GenerateToken(cli.conf, claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "id of the coordinator, supervisor or student")
	cmd.Flags().StringVar(&role, "role", "", "coordinator, supervisor or student")
	cmd.Flags().StringVar(&department, "department", "", "department the caller belongs to")
	_ = cmd.MarkFlagRequired("sub")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
