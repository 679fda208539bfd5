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

// BranchRepository provides persistence for branches.
type BranchRepository struct {
	db *sqlx.DB
}

// NewBranchRepository creates a new branch repository.
func NewBranchRepository(db *sqlx.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// ListByYear returns all branches of a year in insertion order.
func (r *BranchRepository) ListByYear(ctx context.Context, yearID string) ([]models.Branch, error) {
	const query = `SELECT id, name, year_id, created_at, updated_at FROM branches WHERE year_id = $1 ORDER BY created_at ASC`
	var branches []models.Branch
	if err := r.db.SelectContext(ctx, &branches, query, yearID); err != nil {
		return nil, fmt.Errorf("list branches by year: %w", err)
	}
	return branches, nil
}

// FindByID loads a branch by id.
func (r *BranchRepository) FindByID(ctx context.Context, id string) (*models.Branch, error) {
	const query = `SELECT id, name, year_id, created_at, updated_at FROM branches WHERE id = $1`
	var branch models.Branch
	if err := r.db.GetContext(ctx, &branch, query, id); err != nil {
		return nil, err
	}
	return &branch, nil
}

// ExistsByName reports whether the year already has a branch with the name,
// ignoring excludeID.
func (r *BranchRepository) ExistsByName(ctx context.Context, name, yearID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM branches WHERE LOWER(name) = LOWER($1) AND year_id = $2"
	args := []interface{}{name, yearID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check branch name: %w", err)
	}
	return true, nil
}

// Create stores a new branch.
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	if branch.ID == "" {
		branch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	const query = `INSERT INTO branches (id, name, year_id, created_at, updated_at) VALUES (:id, :name, :year_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, branch); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// Update modifies a branch and rewrites the formatted names of its sections
// in the same transaction, so the derived labels never drift from the branch
// name.
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	branch.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update branch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE branches SET name = :name, year_id = :year_id, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, branch); err != nil {
		return fmt.Errorf("update branch: %w", err)
	}

	const refresh = `UPDATE sections SET formatted_name = $1 || ' - ' || name, updated_at = $2 WHERE branch_id = $3`
	if _, err = tx.ExecContext(ctx, refresh, branch.Name, branch.UpdatedAt, branch.ID); err != nil {
		return fmt.Errorf("refresh section formatted names: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update branch: %w", err)
	}
	return nil
}

// Delete removes a branch by id.
func (r *BranchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM branches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return nil
}
