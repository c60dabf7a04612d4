package main

import (
	"context"
	"expvar"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof" // /debug/pprof
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	dig_container "github.com/trezcool/fyp/apps/api/di/dig"
	echoapi "github.com/trezcool/fyp/apps/api/echo"
	"github.com/trezcool/fyp/core"
)

type app struct {
	conf     *core.Config
	logger   core.Logger
	dbLogger core.Logger
	db       io.Closer
	server   *echoapi.Server
}

func main() {
	err := dig_container.New().Invoke(func(
		conf *core.Config,
		logger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db io.Closer,
		server *echoapi.Server,
	) error {
		a := app{conf: conf, logger: logger, dbLogger: dbLoggerParam.Logger, db: db, server: server}
		return a.run()
	})
	if err != nil {
		log.Fatal(err)
	}
}

func (a app) run() error {
	a.logger.Info("fyp api starting", map[string]interface{}{"build": a.conf.Build, "env": a.conf.Env})
	defer a.logger.Info("fyp api stopped")
	defer a.closeDB()

	a.startDebug()

	signal.Notify(a.server.ShutdownSignal(), os.Interrupt, syscall.SIGTERM)
	go a.server.Start()

	select {
	case err := <-a.server.Errors():
		return errors.Wrap(err, "serving api")
	case sig := <-a.server.ShutdownSignal():
		a.logger.Info("shutdown requested", map[string]interface{}{"signal": sig.String()})
		a.shutdown()
		return nil
	}
}

// startDebug serves /debug/pprof and /debug/vars on the debug host.
func (a app) startDebug() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)
	expvar.NewString("database_engine").Set(a.conf.Database.Engine)
	expvar.NewString("scheduling_day").Set(a.conf.Scheduling.DayStart + "-" + a.conf.Scheduling.DayEnd)

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error("debug server closed", err)
		}
	}()
}

// shutdown drains in-flight requests until the shutdown timeout, then forces the listener closed.
func (a app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("graceful shutdown failed", err)
		if err = a.server.Close(); err != nil {
			a.logger.Error("forced shutdown failed", err)
		}
	}
}

func (a app) closeDB() {
	if err := a.db.Close(); err != nil {
		a.dbLogger.Error("closing database", err)
	}
}
