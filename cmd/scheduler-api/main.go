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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-scheduler-api/api/swagger"
	"github.com/noah-isme/course-scheduler-api/internal/handler"
	"github.com/noah-isme/course-scheduler-api/internal/repository"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	"github.com/noah-isme/course-scheduler-api/pkg/cache"
	"github.com/noah-isme/course-scheduler-api/pkg/config"
	"github.com/noah-isme/course-scheduler-api/pkg/database"
	"github.com/noah-isme/course-scheduler-api/pkg/jobs"
	"github.com/noah-isme/course-scheduler-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title Course Scheduler API
// @version 1.0.0
// @description Generates weekly course timetables and manages student enrollment into the generated sections.
// @BasePath /api
// @schemes http
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis, cfg.Cache.Enabled)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	policy, err := scheduler.LoadPolicy(cfg.Scheduler.PolicyFile)
	if err != nil {
		return fmt.Errorf("load scheduling policy: %w", err)
	}
	engineOpts := []scheduler.Option{scheduler.WithPolicy(policy), scheduler.WithLogger(logr.Named("scheduler"))}
	if cfg.Scheduler.Seed != 0 {
		engineOpts = append(engineOpts, scheduler.WithSeed(cfg.Scheduler.Seed))
	}
	engine := scheduler.NewEngine(engineOpts...)

	validate := validator.New()
	metrics := service.NewMetricsService()

	semesters := repository.NewSemesterRepository(db)
	courses := repository.NewCourseRepository(db)
	specializations := repository.NewSpecializationRepository(db)
	classrooms := repository.NewClassroomRepository(db)
	teachers := repository.NewTeacherRepository(db)
	students := repository.NewStudentRepository(db)
	histories := repository.NewHistoryRepository(db)
	sections := repository.NewCourseSectionRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.UtilizationTTL, logr, cfg.Cache.Enabled && redisClient != nil)
	utilizationSvc := service.NewUtilizationService(semesters, sections, cacheSvc, cfg.Cache.UtilizationTTL, policy, logr)

	queue := jobs.NewQueue("scheduler", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	queue.Register(service.JobUtilizationRefresh, utilizationSvc.HandleRefreshJob)
	queue.Start(ctx)
	defer queue.Stop()

	authSvc := service.NewAuthService(students, teachers, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	generatorSvc := service.NewScheduleGeneratorService(service.ScheduleGeneratorDeps{
		Engine:          engine,
		Semesters:       semesters,
		Courses:         courses,
		Specializations: specializations,
		Teachers:        teachers,
		Rooms:           classrooms,
		Students:        students,
		Histories:       histories,
		Sections:        sections,
		Enrollments:     enrollments,
		Tx:              db,
		Cache:           cacheSvc,
		Queue:           queue,
		Metrics:         metrics,
	}, logr)
	enrollmentSvc := service.NewEnrollmentService(students, semesters, sections, enrollments, histories, courses, db, metrics, validate, logr,
		service.EnrollmentConfig{SectionCapacity: policy.RoomCapacity})
	catalogSvc := service.NewCatalogService(courses, classrooms, semesters, specializations, logr)
	teacherSvc := service.NewTeacherService(teachers, logr)
	studentSvc := service.NewStudentService(students, logr)

	checks := map[string]handler.Pinger{"database": db}
	if cacheRepo.Enabled() {
		checks["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}

	router := newRouter(cfg, logr, authSvc, metrics, handlers{
		auth:        handler.NewAuthHandler(authSvc),
		schedule:    handler.NewScheduleHandler(generatorSvc),
		utilization: handler.NewUtilizationHandler(utilizationSvc),
		catalog:     handler.NewCatalogHandler(catalogSvc, teacherSvc),
		students:    handler.NewStudentHandler(studentSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		health:      handler.NewHealthHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
