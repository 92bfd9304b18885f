package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/k25dtcn010/project-base/internal/models"
	appErrors "github.com/k25dtcn010/project-base/pkg/errors"
)

type shiftRepository interface {
	ListActive(ctx context.Context) ([]models.Shift, error)
	ListAll(ctx context.Context) ([]models.Shift, error)
	FindByID(ctx context.Context, id string) (*models.Shift, error)
	ExistsActiveByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	SetActive(ctx context.Context, id string, active bool) error
}

type shiftCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const activeShiftsCacheKey = "shifts:active"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// CreateShiftRequest describes the payload for defining a shift.
type CreateShiftRequest struct {
	Name        string  `json:"name" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Description *string `json:"description"`
}

// UpdateShiftRequest updates mutable fields on a shift.
type UpdateShiftRequest struct {
	Name        string  `json:"name" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// ShiftService manages the shift catalog. The active list is the hot path
// for every analysis run, so it is cached in Redis and invalidated on writes.
type ShiftService struct {
	repo      shiftRepository
	cache     shiftCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewShiftService creates a new shift service instance.
func NewShiftService(repo shiftRepository, cache shiftCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ShiftService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger, metrics: metrics}
}

// ActiveShifts returns active shifts ordered by start time, serving from the
// cache when possible.
func (s *ShiftService) ActiveShifts(ctx context.Context) ([]models.Shift, error) {
	if s.cache != nil {
		started := time.Now()
		var cached []models.Shift
		err := s.cache.Get(ctx, activeShiftsCacheKey, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true, time.Since(started))
			}
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("shift cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false, time.Since(started))
		}
	}

	shifts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active shifts")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, activeShiftsCacheKey, shifts, s.cacheTTL); err != nil {
			s.logger.Warn("shift cache write failed", zap.Error(err))
		}
	}

	return shifts, nil
}

// List returns every shift, optionally including inactive ones.
func (s *ShiftService) List(ctx context.Context, includeInactive bool) ([]models.Shift, error) {
	if !includeInactive {
		return s.ActiveShifts(ctx)
	}
	shifts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, nil
}

// Get returns a shift by ID.
func (s *ShiftService) Get(ctx context.Context, id string) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// Create defines a new shift, enforcing time format and name uniqueness
// among active shifts.
func (s *ShiftService) Create(ctx context.Context, req CreateShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	if err := validateShiftWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsActiveByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shift name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an active shift with this name already exists")
	}

	shift := &models.Shift{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}

	s.invalidateCache(ctx)
	s.logger.Info("shift created", zap.String("shift_id", shift.ID), zap.String("name", shift.Name))
	return shift, nil
}

// Update modifies an existing shift.
func (s *ShiftService) Update(ctx context.Context, id string, req UpdateShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	if err := validateShiftWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsActiveByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check shift name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an active shift with this name already exists")
	}

	shift.Name = req.Name
	shift.StartTime = req.StartTime
	shift.EndTime = req.EndTime
	shift.Description = req.Description
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}

	s.invalidateCache(ctx)
	s.logger.Info("shift updated", zap.String("shift_id", shift.ID))
	return shift, nil
}

// SetActive toggles a shift's active flag. Deactivation removes the shift
// from future analysis runs; existing segments are untouched.
func (s *ShiftService) SetActive(ctx context.Context, id string, active bool) (*models.Shift, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle shift")
	}

	s.invalidateCache(ctx)
	s.logger.Info("shift toggled", zap.String("shift_id", id), zap.Bool("active", active))
	return s.Get(ctx, id)
}

func (s *ShiftService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeShiftsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate shift cache", zap.Error(err))
	}
}

func validateShiftWindow(startTime, endTime string) error {
	if !clockPattern.MatchString(startTime) || !clockPattern.MatchString(endTime) {
		return appErrors.Clone(appErrors.ErrValidation, "start_time and end_time must be HH:mm")
	}
	if startTime == endTime {
		return appErrors.Clone(appErrors.ErrValidation, "start_time and end_time must differ")
	}
	return nil
}
