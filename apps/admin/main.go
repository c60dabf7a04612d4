package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	dig_container "github.com/trezcool/fyp/apps/api/di/dig"
	"github.com/trezcool/fyp/core"
	csvsvc "github.com/trezcool/fyp/services/csv"
	logsvc "github.com/trezcool/fyp/services/logger"
	"github.com/trezcool/fyp/storage/database"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(os.Stderr, "admin", conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	cli := &commandLine{
		conf:   conf,
		logger: logger,
		openDB: func(ctx context.Context) (*sql.DB, error) {
			db, err := database.Open(ctx, conf)
			if err != nil {
				return nil, err
			}
			return db.DB, nil
		},
		csvService: containerCSVService,
	}
	if err := cli.rootCmd().Execute(); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

// containerCSVService resolves the CSV service, and the database behind it, from the API's container.
func containerCSVService() (*csvsvc.Service, io.Closer, error) {
	var (
		svc    *csvsvc.Service
		closer io.Closer
	)
	err := dig_container.New().Invoke(func(s *csvsvc.Service, c io.Closer) {
		svc, closer = s, c
	})
	return svc, closer, err
}
