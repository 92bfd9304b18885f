package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/k25dtcn010/project-base/api/swagger"
	"github.com/k25dtcn010/project-base/internal/handler"
	"github.com/k25dtcn010/project-base/internal/middleware"
	"github.com/k25dtcn010/project-base/internal/models"
	"github.com/k25dtcn010/project-base/internal/repository"
	"github.com/k25dtcn010/project-base/internal/service"
	"github.com/k25dtcn010/project-base/pkg/cache"
	"github.com/k25dtcn010/project-base/pkg/config"
	"github.com/k25dtcn010/project-base/pkg/database"
	"github.com/k25dtcn010/project-base/pkg/export"
	"github.com/k25dtcn010/project-base/pkg/logger"
	corsmiddleware "github.com/k25dtcn010/project-base/pkg/middleware/cors"
	reqidmiddleware "github.com/k25dtcn010/project-base/pkg/middleware/requestid"
)

// @title Timekeeper API
// @version 1.0.0
// @description Attendance tracking and shift reconciliation backend
// @BasePath /api/v1
// @schemes http

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

	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid attendance timezone", "timezone", cfg.Attendance.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, shift cache disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	shiftRepo := repository.NewShiftRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	shiftSvc := service.NewShiftService(shiftRepo, cacheRepo, cfg.Attendance.ShiftCacheTTL, validate, logr, metricsSvc)
	analysisSvc := service.NewAnalysisService(attendanceRepo, shiftSvc, loc, logr, metricsSvc)
	analysisSvc.ConfigureWorkers(cfg.Reanalysis.WorkerConcurrency, cfg.Reanalysis.WorkerRetries, cfg.Reanalysis.RetryDelay)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, employeeRepo, analysisSvc, loc, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, shiftRepo, employeeRepo, validate, logr)
	requestSvc := service.NewRequestService(requestRepo, scheduleRepo, attendanceRepo, shiftRepo, employeeRepo, validate, logr)
	reportSvc := service.NewReportService(attendanceRepo, export.NewCSVExporter(), export.NewPDFExporter(), loc, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	analysisHandler := handler.NewAnalysisHandler(analysisSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	managerOnly := middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleManager)

	attendance := protected.Group("/attendance")
	attendance.POST("/check-in", attendanceHandler.CheckIn)
	attendance.POST("/check-out", attendanceHandler.CheckOut)
	attendance.POST("/confirm-check-out", managerOnly, attendanceHandler.ConfirmCheckOut)
	attendance.GET("/history", attendanceHandler.History)
	attendance.GET("/:id", attendanceHandler.Get)

	shifts := protected.Group("/shifts")
	shifts.GET("", shiftHandler.List)
	shifts.GET("/:id", shiftHandler.Get)
	shifts.POST("", managerOnly, shiftHandler.Create)
	shifts.PUT("/:id", managerOnly, shiftHandler.Update)
	shifts.POST("/:id/toggle", managerOnly, shiftHandler.Toggle)

	schedules := protected.Group("/shift-schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.GET("/:id", scheduleHandler.Get)
	schedules.GET("/employee/:employeeId", scheduleHandler.ListByEmployee)
	schedules.POST("", managerOnly, scheduleHandler.Create)
	schedules.PUT("/:id", managerOnly, scheduleHandler.Update)
	schedules.DELETE("/:id", managerOnly, scheduleHandler.Delete)

	requests := protected.Group("/requests")
	requests.POST("", requestHandler.Create)
	requests.GET("/pending", managerOnly, requestHandler.ListPending)
	requests.GET("/employee/:employeeId", requestHandler.ListByEmployee)
	requests.GET("/:id", requestHandler.Get)
	requests.POST("/:id/approve", managerOnly, requestHandler.Approve)
	requests.POST("/:id/reject", managerOnly, requestHandler.Reject)

	employees := protected.Group("/employees")
	employees.GET("", employeeHandler.List)
	employees.GET("/:id", employeeHandler.Get)
	employees.POST("", managerOnly, employeeHandler.Create)
	employees.PUT("/:id", managerOnly, employeeHandler.Update)
	employees.POST("/import", managerOnly, employeeHandler.Import)

	analysis := protected.Group("/analysis")
	analysis.POST("/attendance/:id", managerOnly, analysisHandler.Analyze)
	analysis.POST("/reanalyze", managerOnly, analysisHandler.ReanalyzeAll)

	reports := protected.Group("/reports")
	reports.GET("/attendance.csv", reportHandler.ExportCSV)
	reports.GET("/attendance.pdf", reportHandler.ExportPDF)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", cfg.Attendance.Timezone)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
