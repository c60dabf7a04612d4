package main

import (
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/trezcool/fyp/storage/database"
)

var gooseRunFunc database.GooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, up-to, down, down-to, redo, reset, status, version) over the migrations",
		Args:  requireArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := cli.openDB(cmd.Context())
			if err != nil {
				return err
			}
			if db != nil {
				defer func() { _ = db.Close() }()
			}
			return database.RunMigrationsWith(cmd.Context(), gooseRunFunc, db, args[0], args[1:]...)
		},
	}
}
