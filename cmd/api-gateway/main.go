package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ColegioIDS/ids-attendance-api/api/swagger"
	"github.com/ColegioIDS/ids-attendance-api/internal/handler"
	"github.com/ColegioIDS/ids-attendance-api/internal/middleware"
	"github.com/ColegioIDS/ids-attendance-api/internal/repository"
	"github.com/ColegioIDS/ids-attendance-api/internal/service"
	"github.com/ColegioIDS/ids-attendance-api/pkg/cache"
	"github.com/ColegioIDS/ids-attendance-api/pkg/config"
	"github.com/ColegioIDS/ids-attendance-api/pkg/database"
	"github.com/ColegioIDS/ids-attendance-api/pkg/export"
	"github.com/ColegioIDS/ids-attendance-api/pkg/jobs"
	"github.com/ColegioIDS/ids-attendance-api/pkg/logger"
	corsmiddleware "github.com/ColegioIDS/ids-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ColegioIDS/ids-attendance-api/pkg/middleware/requestid"
)

// @title IDS Attendance API
// @version 1.0.0
// @description Attendance registration and reporting service
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	statusRepo := repository.NewAttendanceStatusRepository(db)
	configRepo := repository.NewAttendanceConfigRepository(db)
	absenceRepo := repository.NewTeacherAbsenceRepository(db)
	attendanceRepo := repository.NewClassAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	reportCache := repository.NewReportCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	calendarSvc := service.NewCalendarService(calendarRepo, logr)
	scopeSvc := service.NewScopeService(userRepo, gradeRepo, scheduleRepo, logr)
	validatorSvc := service.NewAttendanceValidator(scopeSvc, calendarSvc, scheduleRepo, enrollmentRepo, statusRepo, configRepo, absenceRepo, gradeRepo, nil, logr)
	reportSvc := service.NewReportService(attendanceRepo, reportRepo, enrollmentRepo, reportCache, calendarSvc, configRepo, cfg.Attendance.BulkTxTimeout, cfg.Attendance.ReportCacheTTL, logr)
	attendanceSvc := service.NewAttendanceService(validatorSvc, attendanceRepo, reportSvc, reportCache, metricsSvc, cfg.Attendance.BulkTxTimeout, logr)
	exportSvc := service.NewExportService(attendanceRepo, enrollmentRepo, reportSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Background report recalculation.
	recalcQueue := jobs.NewQueue(exportSvc.HandleRecalcJob, jobs.QueueConfig{
		Workers:    cfg.Recalc.Workers,
		BufferSize: cfg.Recalc.BufferSize,
		MaxRetries: cfg.Recalc.MaxRetries,
		RetryDelay: cfg.Recalc.RetryDelay,
		Logger:     logr,
	})
	exportSvc.BindQueue(recalcQueue)
	recalcQueue.Start(context.Background())
	defer recalcQueue.Stop()

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, reportSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/attendance/bulk", attendanceHandler.RegisterBulk)
	authed.GET("/attendance/reports/:enrollmentId", attendanceHandler.GetReport)
	authed.POST("/attendance/reports/recalculate", attendanceHandler.Recalculate)
	if cfg.Export.Enabled {
		authed.GET("/attendance/sections/:id/export", attendanceHandler.ExportSection)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
