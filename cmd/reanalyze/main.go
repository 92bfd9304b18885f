// Command reanalyze re-runs segment analysis over every completed
// attendance. Analysis is a full replace per attendance, so the command can
// be run at any time, typically after shift definitions change.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/k25dtcn010/project-base/internal/repository"
	"github.com/k25dtcn010/project-base/internal/service"
	"github.com/k25dtcn010/project-base/pkg/cache"
	"github.com/k25dtcn010/project-base/pkg/config"
	"github.com/k25dtcn010/project-base/pkg/database"
	"github.com/k25dtcn010/project-base/pkg/logger"
)

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

	attendanceRepo := repository.NewAttendanceRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	shiftSvc := service.NewShiftService(shiftRepo, cacheRepo, cfg.Attendance.ShiftCacheTTL, nil, logr, nil)
	analysisSvc := service.NewAnalysisService(attendanceRepo, shiftSvc, loc, logr, nil)
	analysisSvc.ConfigureWorkers(cfg.Reanalysis.WorkerConcurrency, cfg.Reanalysis.WorkerRetries, cfg.Reanalysis.RetryDelay)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := analysisSvc.ReanalyzeAll(ctx)
	if err != nil {
		logr.Sugar().Fatalw("re-analysis failed", "error", err)
	}

	logr.Sugar().Infow("re-analysis finished",
		"total", summary.Total,
		"analyzed", summary.Analyzed,
		"skipped_no_check_out", summary.SkippedNoCheckOut,
		"skipped_no_active_shifts", summary.SkippedNoShifts,
		"failed", summary.Failed)
}
