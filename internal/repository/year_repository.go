package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// YearRepository provides persistence for academic years.
type YearRepository struct {
	db *sqlx.DB
}

// NewYearRepository creates a new year repository.
func NewYearRepository(db *sqlx.DB) *YearRepository {
	return &YearRepository{db: db}
}

// ListByProgram returns all years of a program in insertion order.
func (r *YearRepository) ListByProgram(ctx context.Context, programID string) ([]models.Year, error) {
	const query = `SELECT id, name, year_number, program_id, created_at, updated_at FROM years WHERE program_id = $1 ORDER BY created_at ASC`
	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, query, programID); err != nil {
		return nil, fmt.Errorf("list years by program: %w", err)
	}
	return years, nil
}

// FindByID loads a year by id.
func (r *YearRepository) FindByID(ctx context.Context, id string) (*models.Year, error) {
	const query = `SELECT id, name, year_number, program_id, created_at, updated_at FROM years WHERE id = $1`
	var year models.Year
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// ExistsByName reports whether the program already has a year with the name,
// ignoring excludeID.
func (r *YearRepository) ExistsByName(ctx context.Context, name, programID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM years WHERE LOWER(name) = LOWER($1) AND program_id = $2"
	args := []interface{}{name, programID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check year name: %w", err)
	}
	return true, nil
}

// Create stores a new year.
func (r *YearRepository) Create(ctx context.Context, year *models.Year) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	year.CreatedAt = now
	year.UpdatedAt = now

	const query = `INSERT INTO years (id, name, year_number, program_id, created_at, updated_at) VALUES (:id, :name, :year_number, :program_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create year: %w", err)
	}
	return nil
}

// Update modifies a year.
func (r *YearRepository) Update(ctx context.Context, year *models.Year) error {
	year.UpdatedAt = time.Now().UTC()
	const query = `UPDATE years SET name = :name, year_number = :year_number, program_id = :program_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("update year: %w", err)
	}
	return nil
}

// Delete removes a year by id.
func (r *YearRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM years WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete year: %w", err)
	}
	return nil
}
