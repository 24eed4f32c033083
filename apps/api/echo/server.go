package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/vinckarunia/raha-member-app/core"
)

type (
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		ReqLogger  *zap.Logger // nil disables request logs
		AuthSvc    AuthService
		ProfileSvc ProfileService
		HistorySvc HistoryService
		Validate   Validator
		Pinger     core.Pinger
	}

	Server struct {
		opts     Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(opts Options) (*Server, error) {
	if err := vala.BeginValidation().Validate(
		core.NotNil(opts.Conf, "conf"),
		core.NotNil(opts.Logger, "logger"),
		core.NotNil(opts.AuthSvc, "auth service"),
		core.NotNil(opts.ProfileSvc, "profile service"),
		core.NotNil(opts.HistorySvc, "history service"),
		core.NotNil(opts.Validate.Validate, "validator"),
		core.NotNil(opts.Validate.Translator, "translator"),
		core.NotNil(opts.Pinger, "pinger"),
	).Check(); err != nil {
		return nil, err
	}

	s := &Server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	if s.opts.ReqLogger != nil && !conf.Server.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.ReqLogger))
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	api := s.app.Group("/api")
	api.GET("/health", s.health)

	auth := bearerAuth(s.opts.AuthSvc, s.opts.Logger)
	registerUserAPI(api, auth, s.opts.AuthSvc, s.opts.Validate)
	registerProfileAPI(api, auth, s.opts.ProfileSvc, s.opts.Validate)
	registerHistoryAPI(api, auth, s.opts.HistorySvc)

	apiNotFound := func(echo.Context) error { return errAPINotFound }
	api.Any("", apiNotFound)
	api.Any("/*", apiNotFound)

	registerSPA(s.app, conf.Server.PublicDir)
}

// Start blocks serving requests; a listener failure is reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "listening")
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the process to stop as if it received SIGTERM.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signalled
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

func (s *Server) health(ctx echo.Context) error {
	code, status, db := http.StatusOK, "ok", "up"
	if err := s.opts.Pinger.PingContext(ctx.Request().Context()); err != nil {
		s.opts.Logger.Warn("health: database unreachable", err)
		code, status, db = http.StatusServiceUnavailable, "degraded", "down"
	}
	return ctx.JSON(code, envelope{
		Success: code == http.StatusOK,
		Data:    echo.Map{"status": status, "database": db},
	})
}
