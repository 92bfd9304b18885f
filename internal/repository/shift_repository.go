package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/k25dtcn010/project-base/internal/models"
)

// ShiftRepository handles persistence for the shift catalog.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository instantiates a shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

const shiftColumns = "id, name, start_time, end_time, description, is_active, created_at, updated_at"

// ListActive returns active shifts ordered by start time ascending, the
// ordering the overlay engine expects from its callers.
func (r *ShiftRepository) ListActive(ctx context.Context) ([]models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts WHERE is_active = TRUE ORDER BY start_time ASC", shiftColumns)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list active shifts: %w", err)
	}
	return shifts, nil
}

// ListAll returns every shift including inactive ones.
func (r *ShiftRepository) ListAll(ctx context.Context) ([]models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts ORDER BY start_time ASC", shiftColumns)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// FindByID loads a shift by identifier.
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*models.Shift, error) {
	query := fmt.Sprintf("SELECT %s FROM shifts WHERE id = $1", shiftColumns)
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, err
	}
	return &shift, nil
}

// ExistsActiveByName checks whether an active shift with the given name exists.
func (r *ShiftRepository) ExistsActiveByName(ctx context.Context, name, excludeID string) (bool, error) {
	base := "SELECT 1 FROM shifts WHERE name = $1 AND is_active = TRUE"
	args := []interface{}{name}
	if excludeID != "" {
		base += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, base+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check shift name uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new shift record.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now

	const query = `INSERT INTO shifts (id, name, start_time, end_time, description, is_active, created_at, updated_at) VALUES (:id, :name, :start_time, :end_time, :description, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Update modifies an existing shift.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	shift.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shifts SET name = :name, start_time = :start_time, end_time = :end_time, description = :description, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// SetActive flips the active flag on a shift.
func (r *ShiftRepository) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE shifts SET is_active = $2, updated_at = $3 WHERE id = $1`, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("toggle shift: %w", err)
	}
	return nil
}
