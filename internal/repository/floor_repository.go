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

// FloorRepository provides persistence for floors within blocks.
type FloorRepository struct {
	db *sqlx.DB
}

// NewFloorRepository creates a new floor repository.
func NewFloorRepository(db *sqlx.DB) *FloorRepository {
	return &FloorRepository{db: db}
}

// ListByBlock returns all floors of a block in insertion order.
func (r *FloorRepository) ListByBlock(ctx context.Context, blockID string) ([]models.Floor, error) {
	const query = `SELECT id, floor_number, block_id, created_at, updated_at FROM floors WHERE block_id = $1 ORDER BY created_at ASC`
	var floors []models.Floor
	if err := r.db.SelectContext(ctx, &floors, query, blockID); err != nil {
		return nil, fmt.Errorf("list floors by block: %w", err)
	}
	return floors, nil
}

// FindByID loads a floor by id.
func (r *FloorRepository) FindByID(ctx context.Context, id string) (*models.Floor, error) {
	const query = `SELECT id, floor_number, block_id, created_at, updated_at FROM floors WHERE id = $1`
	var floor models.Floor
	if err := r.db.GetContext(ctx, &floor, query, id); err != nil {
		return nil, err
	}
	return &floor, nil
}

// ExistsByNumber reports whether the block already has a floor with the number,
// ignoring excludeID.
func (r *FloorRepository) ExistsByNumber(ctx context.Context, floorNumber int, blockID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM floors WHERE floor_number = $1 AND block_id = $2"
	args := []interface{}{floorNumber, blockID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check floor number: %w", err)
	}
	return true, nil
}

// Create stores a new floor.
func (r *FloorRepository) Create(ctx context.Context, floor *models.Floor) error {
	if floor.ID == "" {
		floor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	floor.CreatedAt = now
	floor.UpdatedAt = now

	const query = `INSERT INTO floors (id, floor_number, block_id, created_at, updated_at) VALUES (:id, :floor_number, :block_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, floor); err != nil {
		return fmt.Errorf("create floor: %w", err)
	}
	return nil
}

// Update modifies a floor.
func (r *FloorRepository) Update(ctx context.Context, floor *models.Floor) error {
	floor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE floors SET floor_number = :floor_number, block_id = :block_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, floor); err != nil {
		return fmt.Errorf("update floor: %w", err)
	}
	return nil
}

// Delete removes a floor by id.
func (r *FloorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM floors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete floor: %w", err)
	}
	return nil
}
