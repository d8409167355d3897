package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Conf   *core.Config
		Logger core.Logger

		TeacherSvc   *teacher.Service
		AreaSvc      *area.Service
		SubjectSvc   *subject.Service
		PeriodSvc    *period.Service
		PlanSvc      *plan.Service
		ReportSvc    *report.Service
		DashboardSvc *dashboard.Service

		// SignalShutdown is called when an unrecoverable error is caught so the
		// main goroutine can shut the whole app down gracefully.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := ConfigureAuth(conf)

	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerAreaAPI(v1, jwt, s.opts.AreaSvc)
	registerSubjectAPI(v1, jwt, s.opts.SubjectSvc)
	registerPeriodAPI(v1, jwt, s.opts.PeriodSvc)
	registerPlanAPI(v1, jwt, s.opts.PlanSvc, s.opts.TeacherSvc)
	registerReportAPI(v1, jwt, s.opts.ReportSvc, s.opts.TeacherSvc)
	registerDashboardAPI(v1, jwt, s.opts.DashboardSvc)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bienvenido a PlanAcad API!")
}
