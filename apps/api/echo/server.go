package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tmusoni/gradeplan/core"
	"github.com/tmusoni/gradeplan/core/academic"
	"github.com/tmusoni/gradeplan/core/course"
	"github.com/tmusoni/gradeplan/core/target"
	"github.com/tmusoni/gradeplan/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger      core.Logger
		UserSvc     *user.Service
		AcademicSvc *academic.Service
		CourseSvc   *course.Service
		TargetSvc   *target.Service
	}

	Server interface {
		http.Handler
		Start() error
		Shutdown(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerAcademicAPI(v1, jwt, s.opts.AcademicSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc)
	registerTargetAPI(v1, jwt, s.opts.TargetSvc)
}

func (s *server) Start() error {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.app.Start(s.opts.Address)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ShutdownSignal exposes the channel the server uses to request its own
// shutdown (on SIGINT/SIGTERM or an integrity issue caught by the error handler).
func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to GradePlan API!")
}
