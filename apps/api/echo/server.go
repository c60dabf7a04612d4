package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/fyp/core"
	"github.com/trezcool/fyp/core/allocation"
	"github.com/trezcool/fyp/core/group"
	"github.com/trezcool/fyp/core/panel"
	"github.com/trezcool/fyp/core/schedule"
	"github.com/trezcool/fyp/core/supervisor"
)

type (
	// Deps are the services the API serves.
	Deps struct {
		SupervisorSvc *supervisor.Service
		GroupSvc      *group.Service
		AllocSvc      *allocation.Service
		PanelSvc      *panel.Service
		ScheduleSvc   *schedule.Service
		Validate      *validator.Validate
		Translator    ut.Translator
		Logger        core.Logger
		Gatherer      prometheus.Gatherer
	}

	Server struct {
		conf     *core.Config
		deps     Deps
		app      *echo.Echo
		jwt      jwtSigner
		shutdown chan os.Signal
		errors   chan error
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(conf *core.Config, deps Deps) *Server {
	s := &Server{
		conf:     conf,
		deps:     deps,
		app:      echo.New(),
		jwt:      newJWTSigner(conf),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", home)
	if s.deps.Gatherer != nil {
		s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.app.Group("/v1", middleware.JWTWithConfig(s.jwt.config()))
	coordinator := roleMiddleware(RoleCoordinator)

	registerGroupAPI(v1, coordinator, s.deps.GroupSvc, s.deps.AllocSvc)
	registerSupervisorAPI(v1, coordinator, s.deps.SupervisorSvc, s.deps.Validate)
	registerPanelAPI(v1, coordinator, s.deps.PanelSvc, s.deps.Validate)
	registerScheduleAPI(v1, coordinator, s.deps.ScheduleSvc, s.deps.Validate)
	registerMeAPI(v1, s.deps.PanelSvc, s.deps.ScheduleSvc)
}

// Start listens until the server is shut down. Any other failure is sent to Errors.
func (s *Server) Start() {
	s.deps.Logger.Info("API listening", map[string]interface{}{"address": s.conf.Server.Host})
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the server to stop it gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// GenerateToken signs claims with the server's secret key.
func (s *Server) GenerateToken(claims *Claims) (string, error) {
	return s.jwt.sign(claims)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to FYP API!")
}
