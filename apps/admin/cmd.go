package main

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezcool/fyp/core"
	csvsvc "github.com/trezcool/fyp/services/csv"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	openDB     func(ctx context.Context) (*sql.DB, error) // mockable
	csvService func() (*csvsvc.Service, io.Closer, error) // mockable
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "FYP administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.exportCmd(),
		cli.tokenCmd(),
	)
	return root
}

// requireArgs prints the usage and fails with errHelp when fewer than n args are given.
func requireArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			_ = cmd.Usage()
			return errHelp
		}
		return nil
	}
}

// withCSV runs fn with the CSV service, releasing the database afterwards.
func (cli *commandLine) withCSV(fn func(svc *csvsvc.Service) error) error {
	svc, closer, err := cli.csvService()
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			cli.logger.Error("closing database", err)
		}
	}()
	return fn(svc)
}
