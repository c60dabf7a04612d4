package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	csvsvc "github.com/trezcool/fyp/services/csv"
)

type importFunc func(svc *csvsvc.Service, ctx context.Context, r io.Reader) (csvsvc.ImportReport, error)

func (cli *commandLine) seedCmd() *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Import supervisors or groups from a CSV file",
	}
	seed.AddCommand(
		&cobra.Command{
			Use:   "supervisors FILE",
			Short: "Import supervisors (name,email,designation,department,max_students)",
			Args:  requireArgs(1),
			RunE:  cli.runSeed((*csvsvc.Service).ImportSupervisors),
		},
		&cobra.Command{
			Use:   "groups FILE",
			Short: "Import groups (name,leader_id,member_ids,department), member ids separated by ';'",
			Args:  requireArgs(1),
			RunE:  cli.runSeed((*csvsvc.Service).ImportGroups),
		},
	)
	return seed
}

func (cli *commandLine) runSeed(importRows importFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening CSV file")
		}
		defer func() { _ = f.Close() }()

		return cli.withCSV(func(svc *csvsvc.Service) error {
			rep, err := importRows(svc, cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d created, %d rejected\n", rep.Created, len(rep.Failed))
			for _, rowErr := range rep.Failed {
				fmt.Fprintf(out, "  line %d: %v\n", rowErr.Line, rowErr.Err)
			}
			if len(rep.Failed) > 0 {
				return errors.Errorf("%d row(s) rejected", len(rep.Failed))
			}
			return nil
		})
	}
}
