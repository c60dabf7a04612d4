package dig_container

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/fyp/apps/api/echo"
	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/allocation"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/project"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
	csvsvc "github.com/trezcool/fyp/services/csv"
	logsvc "github.com/trezcool/fyp/services/logger"
	metricsvc "github.com/trezcool/fyp/services/metrics"
	"github.com/trezcool/fyp/storage/database"
	dummydb "github.com/trezcool/fyp/storage/database/dummy"
	sqlxrepos "github.com/trezcool/fyp/storage/database/sqlx"
)

// Database engines
const (
	EnginePostgres = "postgres"
	EngineDummy    = "dummy"
)

const dbSetUpTimeout = time.Minute

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Stores are the repositories of the configured database engine.
	// Closer releases the database once the application stops.
	Stores struct {
		dig.Out
		Tx          core.Transactor
		Supervisors supervisor.Repository
		Groups      group.Repository
		Projects    project.Repository
		Panels      panel.Repository
		Schedules   schedule.Repository
		Closer      io.Closer
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		SupervisorSvc *supervisor.Service
		GroupSvc      *group.Service
		AllocSvc      *allocation.Service
		PanelSvc      *panel.Service
		ScheduleSvc   *schedule.Service
		Validate      *validator.Validate
		Translator    ut.Translator
		Registry      *prometheus.Registry
	}

	nopCloser struct{}
)

func (nopCloser) Close() error { return nil }

func newLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "api", conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(os.Stdout, "db", conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newStores(conf *core.Config, loggerParam DBLoggerParam) (Stores, error) {
	if conf.Database.Engine == EngineDummy {
		loggerParam.Logger.Warn("using the in-memory database: nothing will be persisted")
		db := dummydb.Open()
		return Stores{
			Tx:          db,
			Supervisors: dummydb.NewSupervisorRepository(db),
			Groups:      dummydb.NewGroupRepository(db),
			Projects:    dummydb.NewProjectRepository(db),
			Panels:      dummydb.NewPanelRepository(db),
			Schedules:   dummydb.NewScheduleRepository(db),
			Closer:      nopCloser{},
		}, nil
	}
	if conf.Database.Engine != EnginePostgres {
		return Stores{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbSetUpTimeout)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return Stores{}, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return Stores{}, errors.Wrap(err, "opening database")
	}
	if err = database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return Stores{}, errors.Wrap(err, "migrating database")
	}
	loggerParam.Logger.Info("database ready", map[string]interface{}{
		"address": conf.Database.Address(), "name": conf.Database.Name,
	})

	return Stores{
		Tx:          sqlxrepos.NewTransactor(db),
		Supervisors: sqlxrepos.NewSupervisorRepository(db),
		Groups:      sqlxrepos.NewGroupRepository(db),
		Projects:    sqlxrepos.NewProjectRepository(db),
		Panels:      sqlxrepos.NewPanelRepository(db),
		Schedules:   sqlxrepos.NewScheduleRepository(db),
		Closer:      db,
	}, nil
}

// newValidator registers the validation tags and their messages on translator.
func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) (core.Metrics, error) {
	return metricsvc.NewRecorder(reg)
}

func newSchedulingConfig(conf *core.Config) core.SchedulingConfig {
	return conf.Scheduling
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf, echoapi.Deps{
		SupervisorSvc: p.SupervisorSvc,
		GroupSvc:      p.GroupSvc,
		AllocSvc:      p.AllocSvc,
		PanelSvc:      p.PanelSvc,
		ScheduleSvc:   p.ScheduleSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
		Logger:        p.Logger,
		Gatherer:      p.Registry,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStores))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newRegistry))
	must(c.Provide(newMetrics))
	must(c.Provide(newSchedulingConfig))
	must(c.Provide(supervisor.NewService))
	must(c.Provide(group.NewService))
	must(c.Provide(panel.NewService))
	must(c.Provide(allocation.NewService))
	must(c.Provide(schedule.NewService))
	must(c.Provide(csvsvc.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
