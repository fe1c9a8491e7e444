package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/alqalam-institute/registry-api/api/swagger"
	"github.com/alqalam-institute/registry-api/internal/handler"
	"github.com/alqalam-institute/registry-api/internal/repository"
	"github.com/alqalam-institute/registry-api/internal/router"
	"github.com/alqalam-institute/registry-api/internal/service"
	"github.com/alqalam-institute/registry-api/pkg/cache"
	"github.com/alqalam-institute/registry-api/pkg/config"
	"github.com/alqalam-institute/registry-api/pkg/database"
	"github.com/alqalam-institute/registry-api/pkg/logger"
)

// @title Academic Registry API
// @version 1.0.0
// @description Terms, subject offerings, registrations, assignments and the weekly timetable.
// @BasePath /
// @schemes http
// @securityDefinitions.basic AdminAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The schedule cache is best effort; the API serves without it.
		logr.Sugar().Warnw("redis unavailable, serving uncached", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()

	departmentRepo := repository.NewDepartmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	termRepo := repository.NewTermRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	metricsSvc := service.NewMetricsService()
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, departmentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	termSvc := service.NewTermService(termRepo, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, termRepo, studentRepo, validate, logr)
	offeringSvc := service.NewOfferingService(offeringRepo, termRepo, subjectRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, termRepo, studentRepo, registrationRepo, offeringRepo, subjectRepo, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, termRepo, periodRepo, offeringRepo, validate, logr)
	portalSvc := service.NewPortalService(studentRepo, termRepo, registrationRepo, assignmentRepo, timetableRepo, redisClient, cfg.Portal, validate, logr)
	portalSvc.SetMetrics(metricsSvc)

	handlers := &router.Handlers{
		Department:   handler.NewDepartmentHandler(departmentSvc),
		Student:      handler.NewStudentHandler(studentSvc),
		Subject:      handler.NewSubjectHandler(subjectSvc),
		Term:         handler.NewTermHandler(termSvc, metricsSvc),
		Registration: handler.NewRegistrationHandler(registrationSvc, metricsSvc),
		Offering:     handler.NewOfferingHandler(offeringSvc),
		Assignment:   handler.NewAssignmentHandler(assignmentSvc, metricsSvc),
		Period:       handler.NewPeriodHandler(periodSvc),
		Timetable:    handler.NewTimetableHandler(timetableSvc, metricsSvc),
		Bootstrap:    handler.NewBootstrapHandler(departmentSvc, subjectSvc, termSvc, periodSvc),
		Portal:       handler.NewPortalHandler(portalSvc),
	}

	engine := router.Setup(router.Deps{
		Config:  cfg,
		Logger:  logr,
		DB:      db,
		Cache:   redisClient,
		Metrics: metricsSvc,
		Portal:  portalSvc,
	}, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
		return
	}
	logr.Sugar().Infow("server stopped")
}
