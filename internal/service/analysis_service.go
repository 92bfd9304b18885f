package service

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/analyzer"
	"github.com/k25dtcn010/project-base/internal/models"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
	"github.com/k25dtcn010/project-base/pkg/jobs"
)

type analysisAttendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	ReplaceShifts(ctx context.Context, attendanceID string, shifts []models.AttendanceShift) error
	ListAnalyzableIDs(ctx context.Context) ([]string, error)
}

type activeShiftProvider interface {
	ActiveShifts(ctx context.Context) ([]models.Shift, error)
}

// AnalysisResult reports the outcome of reconciling one attendance.
type AnalysisResult struct {
	AttendanceID string                   `json:"attendance_id"`
	Outcome      analyzer.Outcome         `json:"outcome"`
	Segments     []models.AttendanceShift `json:"segments"`
}

// ReanalysisSummary aggregates a batch re-analysis run.
type ReanalysisSummary struct {
	Total             int `json:"total"`
	Analyzed          int `json:"analyzed"`
	SkippedNoCheckOut int `json:"skipped_no_check_out"`
	SkippedNoShifts   int `json:"skipped_no_active_shifts"`
	Failed            int `json:"failed"`
}

// AnalysisService orchestrates the shift overlay engine: it loads the raw
// attendance interval and the active shift catalog, runs the engine, and
// replaces the persisted segments with the fresh result.
type AnalysisService struct {
	attendanceRepo analysisAttendanceRepository
	shifts         activeShiftProvider
	loc            *time.Location
	logger         *zap.Logger
	metrics        *MetricsService

	workerConcurrency int
	workerRetries     int
	retryDelay        time.Duration
}

// NewAnalysisService creates a new analysis service instance.
func NewAnalysisService(attendanceRepo analysisAttendanceRepository, shifts activeShiftProvider, loc *time.Location, logger *zap.Logger, metrics *MetricsService) *AnalysisService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		attendanceRepo:    attendanceRepo,
		shifts:            shifts,
		loc:               loc,
		logger:            logger,
		metrics:           metrics,
		workerConcurrency: 2,
		workerRetries:     3,
		retryDelay:        time.Second,
	}
}

// ConfigureWorkers overrides the batch re-analysis worker pool settings.
func (s *AnalysisService) ConfigureWorkers(concurrency, retries int, retryDelay time.Duration) {
	if concurrency > 0 {
		s.workerConcurrency = concurrency
	}
	if retries > 0 {
		s.workerRetries = retries
	}
	if retryDelay > 0 {
		s.retryDelay = retryDelay
	}
}

// Analyze reconciles one attendance against the active shift catalog and
// persists the resulting segments, replacing any prior ones. Intervals that
// cannot be analyzed yet (no check-out, empty catalog) are reported through
// the outcome, not as errors.
func (s *AnalysisService) Analyze(ctx context.Context, attendanceID string) (*AnalysisResult, error) {
	started := time.Now()

	attendance, err := s.attendanceRepo.FindByID(ctx, attendanceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	if attendance.CheckOutTime == nil {
		s.logger.Info("skipping analysis, attendance has no check-out",
			zap.String("attendance_id", attendanceID))
		s.observe(analyzer.OutcomeNoCheckOut, 0, time.Since(started))
		return &AnalysisResult{AttendanceID: attendanceID, Outcome: analyzer.OutcomeNoCheckOut}, nil
	}

	shifts, err := s.shifts.ActiveShifts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active shifts")
	}

	interval := analyzer.Interval{CheckIn: attendance.CheckInTime, CheckOut: attendance.CheckOutTime}
	segments, outcome := analyzer.Analyze(interval, shifts, s.loc)
	if outcome == analyzer.OutcomeNoActiveShifts {
		// Segments computed under an earlier catalog must not survive once
		// every shift is deactivated.
		if err := s.attendanceRepo.ReplaceShifts(ctx, attendanceID, nil); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear attendance segments")
		}
		s.logger.Warn("skipping analysis, no active shifts configured",
			zap.String("attendance_id", attendanceID))
		s.observe(outcome, 0, time.Since(started))
		return &AnalysisResult{AttendanceID: attendanceID, Outcome: outcome}, nil
	}

	rows := make([]models.AttendanceShift, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, models.AttendanceShift{
			AttendanceID:      attendanceID,
			ShiftID:           seg.ShiftID,
			WorkDate:          seg.WorkDate,
			ActualStartTime:   seg.ActualStartTime,
			ActualEndTime:     seg.ActualEndTime,
			DurationMinutes:   seg.DurationMinutes,
			LateMinutes:       seg.LateMinutes,
			EarlyLeaveMinutes: seg.EarlyLeaveMinutes,
			OverlapPercentage: seg.OverlapPercentage,
			ShiftType:         seg.ShiftType,
			Note:              seg.Note,
		})
	}

	if err := s.attendanceRepo.ReplaceShifts(ctx, attendanceID, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist attendance segments")
	}

	s.logger.Info("attendance analyzed",
		zap.String("attendance_id", attendanceID),
		zap.Int("segments", len(rows)))
	s.observe(outcome, len(rows), time.Since(started))

	return &AnalysisResult{AttendanceID: attendanceID, Outcome: outcome, Segments: rows}, nil
}

// ReanalyzeAll re-runs the engine over every attendance that has a check-out
// time, fanning the work out across a worker pool. Analysis is a full replace
// per attendance, so re-running is safe at any time.
func (s *AnalysisService) ReanalyzeAll(ctx context.Context) (*ReanalysisSummary, error) {
	ids, err := s.attendanceRepo.ListAnalyzableIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list analyzable attendances")
	}

	var analyzed, noCheckOut, noShifts, failed int64
	var wg sync.WaitGroup

	handler := func(ctx context.Context, job jobs.Job) error {
		defer wg.Done()
		id, _ := job.Payload.(string)

		result, err := s.Analyze(ctx, id)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			s.logger.Error("re-analysis failed",
				zap.String("attendance_id", id),
				zap.Error(err))
			return nil
		}

		switch result.Outcome {
		case analyzer.OutcomeNoCheckOut:
			atomic.AddInt64(&noCheckOut, 1)
		case analyzer.OutcomeNoActiveShifts:
			atomic.AddInt64(&noShifts, 1)
		default:
			atomic.AddInt64(&analyzed, 1)
		}
		return nil
	}

	queue := jobs.NewQueue("reanalysis", handler, jobs.QueueConfig{
		Workers:    s.workerConcurrency,
		BufferSize: len(ids) + 1,
		MaxRetries: s.workerRetries,
		RetryDelay: s.retryDelay,
		Logger:     s.logger,
	})
	queue.Start(ctx)
	defer queue.Stop()

	for _, id := range ids {
		wg.Add(1)
		if err := queue.Enqueue(jobs.Job{ID: id, Type: "reanalyze", Payload: id}); err != nil {
			wg.Done()
			atomic.AddInt64(&failed, 1)
			s.logger.Error("failed to enqueue re-analysis job",
				zap.String("attendance_id", id),
				zap.Error(err))
		}
	}
	wg.Wait()

	summary := &ReanalysisSummary{
		Total:             len(ids),
		Analyzed:          int(analyzed),
		SkippedNoCheckOut: int(noCheckOut),
		SkippedNoShifts:   int(noShifts),
		Failed:            int(failed),
	}
	s.logger.Info("re-analysis complete",
		zap.Int("total", summary.Total),
		zap.Int("analyzed", summary.Analyzed),
		zap.Int("skipped_no_check_out", summary.SkippedNoCheckOut),
		zap.Int("skipped_no_active_shifts", summary.SkippedNoShifts),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (s *AnalysisService) observe(outcome analyzer.Outcome, segments int, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveAnalysis(string(outcome), segments, duration)
	}
}
