package models

import "time"

// Block is a physical building on campus. Block names are unique.
type Block struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Floor belongs to a block; (floor_number, block_id) is unique.
type Floor struct {
	ID          string    `db:"id" json:"id"`
	FloorNumber int       `db:"floor_number" json:"floor_number"`
	BlockID     string    `db:"block_id" json:"block_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RoomType is a closed enumeration; each variant fixes the room layout.
type RoomType string

const (
	RoomType8x8  RoomType = "ROOM_8X8"
	RoomType8x12 RoomType = "ROOM_8X12"
)

// Dimensions returns the fixed (rows, columns) pair for the room type.
// The second return value is false for unrecognised variants.
func (t RoomType) Dimensions() (int, int, bool) {
	switch t {
	case RoomType8x8:
		return 8, 8, true
	case RoomType8x12:
		return 8, 12, true
	default:
		return 0, 0, false
	}
}

// Room belongs to a floor; (room_number, floor_id) is unique. RowCount,
// ColumnCount and Capacity are derived from RoomType, never set directly.
type Room struct {
	ID          string    `db:"id" json:"id"`
	RoomNumber  string    `db:"room_number" json:"room_number"`
	FloorID     string    `db:"floor_id" json:"floor_id"`
	RoomType    RoomType  `db:"room_type" json:"room_type"`
	RowCount    int       `db:"row_count" json:"row_count"`
	ColumnCount int       `db:"column_count" json:"column_count"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
