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

// InvigilatorRepository provides persistence for invigilators.
type InvigilatorRepository struct {
	db *sqlx.DB
}

// NewInvigilatorRepository creates a new invigilator repository.
func NewInvigilatorRepository(db *sqlx.DB) *InvigilatorRepository {
	return &InvigilatorRepository{db: db}
}

// List returns all invigilators in insertion order.
func (r *InvigilatorRepository) List(ctx context.Context) ([]models.Invigilator, error) {
	const query = `SELECT id, name, email, employee_id, department, phone_number, designation, available, created_at, updated_at FROM invigilators ORDER BY created_at ASC`
	var invigilators []models.Invigilator
	if err := r.db.SelectContext(ctx, &invigilators, query); err != nil {
		return nil, fmt.Errorf("list invigilators: %w", err)
	}
	return invigilators, nil
}

// FindByID loads an invigilator by id.
func (r *InvigilatorRepository) FindByID(ctx context.Context, id string) (*models.Invigilator, error) {
	const query = `SELECT id, name, email, employee_id, department, phone_number, designation, available, created_at, updated_at FROM invigilators WHERE id = $1`
	var invigilator models.Invigilator
	if err := r.db.GetContext(ctx, &invigilator, query, id); err != nil {
		return nil, err
	}
	return &invigilator, nil
}

// ExistsByEmail reports whether another invigilator uses the email.
func (r *InvigilatorRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT 1 FROM invigilators WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check invigilator email: %w", err)
	}
	return true, nil
}

// ExistsByEmployeeID reports whether another invigilator uses the employee id.
func (r *InvigilatorRepository) ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM invigilators WHERE LOWER(employee_id) = LOWER($1)"
	args := []interface{}{employeeID}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check invigilator employee id: %w", err)
	}
	return true, nil
}

// Create stores a new invigilator.
func (r *InvigilatorRepository) Create(ctx context.Context, invigilator *models.Invigilator) error {
	if invigilator.ID == "" {
		invigilator.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	invigilator.CreatedAt = now
	invigilator.UpdatedAt = now

	const query = `INSERT INTO invigilators (id, name, email, employee_id, department, phone_number, designation, available, created_at, updated_at) VALUES (:id, :name, :email, :employee_id, :department, :phone_number, :designation, :available, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invigilator); err != nil {
		return fmt.Errorf("create invigilator: %w", err)
	}
	return nil
}

// Update modifies an invigilator.
func (r *InvigilatorRepository) Update(ctx context.Context, invigilator *models.Invigilator) error {
	invigilator.UpdatedAt = time.Now().UTC()
	const query = `UPDATE invigilators SET name = :name, email = :email, employee_id = :employee_id, department = :department, phone_number = :phone_number, designation = :designation, available = :available, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, invigilator); err != nil {
		return fmt.Errorf("update invigilator: %w", err)
	}
	return nil
}

// Delete removes an invigilator by id.
func (r *InvigilatorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM invigilators WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invigilator: %w", err)
	}
	return nil
}
