package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/schedule"
	csvsvc "github.com/trezcool/fyp/services/csv"
)

func (cli *commandLine) exportCmd() *cobra.Command {
	var department, date string

	schedules := &cobra.Command{
		Use:   "schedules FILE",
		Short: "Export presentation schedules as CSV, by date then time slot. FILE '-' writes to stdout",
		Args:  requireArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := schedule.QueryFilter{Department: department}
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return errors.Wrap(err, "parsing --date")
				}
				filter.Date = &d
			}

			var w io.Writer = cmd.OutOrStdout()
			if args[0] != "-" {
				f, err := os.Create(args[0])
				if err != nil {
					return errors.Wrap(err, "creating CSV file")
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			return cli.withCSV(func(svc *csvsvc.Service) error {
				n, err := svc.ExportSchedules(cmd.Context(), w, filter)
				if err != nil {
					return err
				}
				if args[0] != "-" {
					fmt.Fprintf(cmd.OutOrStdout(), "%d schedule(s) exported to %s\n", n, args[0])
				}
				return nil
			})
		},
	}
	schedules.Flags().StringVar(&department, "department", "", "only export this department's schedules")
	schedules.Flags().StringVar(&date, "date", "", "only export this date's schedules (YYYY-MM-DD)")

	export := &cobra.Command{
		Use:   "export",
		Short: "Export data as CSV",
	}
	export.AddCommand(schedules)
	return export
}
