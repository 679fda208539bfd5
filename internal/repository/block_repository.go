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

// BlockRepository provides persistence for campus blocks.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// List returns all blocks in insertion order.
func (r *BlockRepository) List(ctx context.Context) ([]models.Block, error) {
	const query = `SELECT id, name, created_at, updated_at FROM blocks ORDER BY created_at ASC`
	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// FindByID loads a block by id.
func (r *BlockRepository) FindByID(ctx context.Context, id string) (*models.Block, error) {
	const query = `SELECT id, name, created_at, updated_at FROM blocks WHERE id = $1`
	var block models.Block
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ExistsByName reports whether a block with the name exists, ignoring excludeID.
func (r *BlockRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM blocks WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check block name: %w", err)
	}
	return true, nil
}

// Create stores a new block.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	block.CreatedAt = now
	block.UpdatedAt = now

	const query = `INSERT INTO blocks (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Update modifies a block.
func (r *BlockRepository) Update(ctx context.Context, block *models.Block) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blocks SET name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	return nil
}

// Delete removes a block by id.
func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}
