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

// SectionRepository provides persistence for sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListByBranch returns all sections of a branch in insertion order.
func (r *SectionRepository) ListByBranch(ctx context.Context, branchID string) ([]models.Section, error) {
	const query = `SELECT id, name, formatted_name, capacity, branch_id, created_at, updated_at FROM sections WHERE branch_id = $1 ORDER BY created_at ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, branchID); err != nil {
		return nil, fmt.Errorf("list sections by branch: %w", err)
	}
	return sections, nil
}

// FindByID loads a section by id.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, name, formatted_name, capacity, branch_id, created_at, updated_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ExistsByName reports whether the branch already has a section with the name,
// ignoring excludeID.
func (r *SectionRepository) ExistsByName(ctx context.Context, name, branchID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM sections WHERE LOWER(name) = LOWER($1) AND branch_id = $2"
	args := []interface{}{name, branchID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check section name: %w", err)
	}
	return true, nil
}

// Create stores a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	const query = `INSERT INTO sections (id, name, formatted_name, capacity, branch_id, created_at, updated_at) VALUES (:id, :name, :formatted_name, :capacity, :branch_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update modifies a section, including its derived formatted name.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET name = :name, formatted_name = :formatted_name, capacity = :capacity, branch_id = :branch_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section by id.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}
