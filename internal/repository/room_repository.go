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

// RoomRepository provides persistence for exam rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListByFloor returns all rooms of a floor in insertion order.
func (r *RoomRepository) ListByFloor(ctx context.Context, floorID string) ([]models.Room, error) {
	const query = `SELECT id, room_number, floor_id, room_type, row_count, column_count, capacity, created_at, updated_at FROM rooms WHERE floor_id = $1 ORDER BY created_at ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, floorID); err != nil {
		return nil, fmt.Errorf("list rooms by floor: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, room_number, floor_id, room_type, row_count, column_count, capacity, created_at, updated_at FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByNumber reports whether the floor already has a room with the number,
// ignoring excludeID.
func (r *RoomRepository) ExistsByNumber(ctx context.Context, roomNumber, floorID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM rooms WHERE LOWER(room_number) = LOWER($1) AND floor_id = $2"
	args := []interface{}{roomNumber, floorID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check room number: %w", err)
	}
	return true, nil
}

// Create stores a new room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, room_number, floor_id, room_type, row_count, column_count, capacity, created_at, updated_at) VALUES (:id, :room_number, :floor_id, :room_type, :row_count, :column_count, :capacity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room, rewriting the derived layout columns.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET room_number = :room_number, room_type = :room_type, row_count = :row_count, column_count = :column_count, capacity = :capacity, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room by id.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
