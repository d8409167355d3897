package main

import (
	"context"
	"database/sql"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/planacad/backend/apps/api/echo"
	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
	emailsvc "github.com/planacad/backend/services/email"
	logsvc "github.com/planacad/backend/services/logger"
	"github.com/planacad/backend/storage/database"
	sqlxrepos "github.com/planacad/backend/storage/database/sqlx"
	"github.com/planacad/backend/storage/filestore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up the remote file store
	store, err := filestore.NewFTPStore(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to file store: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			logger.Error("failed to close file store", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	teacherSvc := teacher.NewService(sqlxrepos.NewTeacherRepository(sdb), mailSvc, conf)
	areaSvc := area.NewService(sqlxrepos.NewAreaRepository(sdb), teacherSvc)
	subjectSvc := subject.NewService(sqlxrepos.NewSubjectRepository(sdb), areaSvc)
	periodSvc := period.NewService(sqlxrepos.NewPeriodRepository(sdb))
	planSvc := plan.NewService(sqlxrepos.NewPlanRepository(sdb), teacherSvc, areaSvc, subjectSvc, store, mailSvc, logger)
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(sdb), teacherSvc, periodSvc, store, mailSvc, logger)
	dashboardSvc := dashboard.NewService(sqlxrepos.NewDashboardRepository(sdb))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Addr:           conf.Server.Addr,
		Conf:           conf,
		Logger:         logger,
		TeacherSvc:     teacherSvc,
		AreaSvc:        areaSvc,
		SubjectSvc:     subjectSvc,
		PeriodSvc:      periodSvc,
		PlanSvc:        planSvc,
		ReportSvc:      reportSvc,
		DashboardSvc:   dashboardSvc,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Addr))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Start Overdue Sweep

	sweepDone := make(chan struct{})
	go sweepOverdue(planSvc, conf.Sweep.Interval, logger, sweepDone)

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		close(sweepDone)

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

// sweepOverdue periodically flips pendiente submissions past their due date
// to no_entregado, until done is closed.
func sweepOverdue(svc *plan.Service, interval time.Duration, logger core.Logger, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n, err := svc.SweepOverdue(context.Background(), time.Now().UTC())
			if err != nil {
				logger.Error(fmt.Sprintf("overdue sweep failed: %v", err), err)
				continue
			}
			if n > 0 {
				logger.Info(fmt.Sprintf("overdue sweep: %d submissions marked no_entregado", n))
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
