package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/course-scheduler-api/internal/handler"
	"github.com/noah-isme/course-scheduler-api/internal/middleware"
	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	"github.com/noah-isme/course-scheduler-api/pkg/config"
	"github.com/noah-isme/course-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-scheduler-api/pkg/middleware/requestid"
)

type handlers struct {
	auth        *handler.AuthHandler
	schedule    *handler.ScheduleHandler
	utilization *handler.UtilizationHandler
	catalog     *handler.CatalogHandler
	students    *handler.StudentHandler
	enrollments *handler.EnrollmentHandler
	health      *handler.HealthHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.health.Health)
	r.GET("/ready", h.health.Ready)
	r.GET("/metrics", h.health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	teacherOnly := middleware.RequireRoles(models.RoleTeacher)

	secured.GET("/auth/me", h.auth.Me)

	secured.POST("/schedule/generate", teacherOnly, h.schedule.Generate)
	secured.GET("/schedule", h.schedule.Get)
	secured.DELETE("/schedule/reset", teacherOnly, h.schedule.Reset)
	secured.GET("/schedule/export", teacherOnly, h.schedule.Export)

	secured.GET("/utilization", h.utilization.Get)

	secured.GET("/courses", h.catalog.ListCourses)
	secured.GET("/courses/:id", h.catalog.GetCourse)
	secured.GET("/teachers", h.catalog.ListTeachers)
	secured.GET("/teachers/:id", h.catalog.GetTeacher)
	secured.GET("/classrooms", h.catalog.ListClassrooms)
	secured.GET("/specializations", h.catalog.ListSpecializations)
	secured.GET("/semesters", h.catalog.ListSemesters)
	secured.GET("/semesters/active", h.catalog.ActiveSemester)

	students := secured.Group("/students")
	students.GET("", teacherOnly, h.students.List)
	students.GET("/course-sections/:sectionId/eligible-dates", h.enrollments.EligibleDates)

	student := students.Group("/:id")
	student.Use(middleware.RBAC(string(models.RoleTeacher), middleware.Self))
	student.GET("", h.students.Get)
	student.GET("/schedule", h.enrollments.Schedule)
	student.GET("/progress", h.enrollments.Progress)
	student.GET("/eligible-sections", h.enrollments.EligibleSections)
	student.GET("/history", h.enrollments.History)
	student.GET("/enrollments/current", h.enrollments.CurrentEnrollments)
	student.POST("/validate-conflict", h.enrollments.ValidateConflict)
	student.POST("/validate-prereq", h.enrollments.ValidatePrerequisite)
	student.POST("/enroll", h.enrollments.Enroll)

	return r
}
