package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type mockRoomRepo struct {
	rooms   map[string]*models.Room
	taken   bool
	created *models.Room
	updated *models.Room
}

func (m *mockRoomRepo) ListByFloor(ctx context.Context, floorID string) ([]models.Room, error) {
	var out []models.Room
	for _, r := range m.rooms {
		if r.FloorID == floorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) ExistsByNumber(ctx context.Context, roomNumber, floorID, excludeID string) (bool, error) {
	return m.taken, nil
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	m.created = room
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	m.updated = room
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type mockFloorRepo struct {
	floors map[string]*models.Floor
}

func (m *mockFloorRepo) ListByBlock(ctx context.Context, blockID string) ([]models.Floor, error) {
	return nil, nil
}

func (m *mockFloorRepo) FindByID(ctx context.Context, id string) (*models.Floor, error) {
	if f, ok := m.floors[id]; ok {
		return f, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFloorRepo) ExistsByNumber(ctx context.Context, floorNumber int, blockID, excludeID string) (bool, error) {
	return false, nil
}

func (m *mockFloorRepo) Create(ctx context.Context, floor *models.Floor) error { return nil }

func (m *mockFloorRepo) Update(ctx context.Context, floor *models.Floor) error { return nil }

func (m *mockFloorRepo) Delete(ctx context.Context, id string) error { return nil }

func newTestRoomService(repo *mockRoomRepo) *RoomService {
	floors := &mockFloorRepo{floors: map[string]*models.Floor{"floor-1": {ID: "floor-1", FloorNumber: 1, BlockID: "block-1"}}}
	return NewRoomService(repo, floors, nil, zap.NewNop())
}

func TestRoomServiceCreateDerivesLayout(t *testing.T) {
	repo := &mockRoomRepo{}
	svc := newTestRoomService(repo)

	room, err := svc.Create(context.Background(), RoomRequest{RoomNumber: "101", RoomType: models.RoomType8x8, FloorID: "floor-1"})
	require.NoError(t, err)
	assert.Equal(t, 8, room.RowCount)
	assert.Equal(t, 8, room.ColumnCount)
	assert.Equal(t, 64, room.Capacity)

	room, err = svc.Create(context.Background(), RoomRequest{RoomNumber: "102", RoomType: models.RoomType8x12, FloorID: "floor-1"})
	require.NoError(t, err)
	assert.Equal(t, 8, room.RowCount)
	assert.Equal(t, 12, room.ColumnCount)
	assert.Equal(t, 96, room.Capacity)
}

func TestRoomServiceCreateUnsupportedType(t *testing.T) {
	repo := &mockRoomRepo{}
	svc := newTestRoomService(repo)

	_, err := svc.Create(context.Background(), RoomRequest{RoomNumber: "101", RoomType: "ROOM_10X10", FloorID: "floor-1"})
	require.Error(t, err)
	assert.Equal(t, "UNSUPPORTED_ROOM_TYPE", appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestRoomServiceCreateDuplicateNumber(t *testing.T) {
	repo := &mockRoomRepo{taken: true}
	svc := newTestRoomService(repo)

	_, err := svc.Create(context.Background(), RoomRequest{RoomNumber: "101", RoomType: models.RoomType8x8, FloorID: "floor-1"})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", appErrors.FromError(err).Code)
}

func TestRoomServiceUpdateRewritesLayout(t *testing.T) {
	repo := &mockRoomRepo{rooms: map[string]*models.Room{
		"room-1": {ID: "room-1", RoomNumber: "101", FloorID: "floor-1", RoomType: models.RoomType8x8, RowCount: 8, ColumnCount: 8, Capacity: 64},
	}}
	svc := newTestRoomService(repo)

	room, err := svc.Update(context.Background(), "room-1", RoomRequest{RoomNumber: "101", RoomType: models.RoomType8x12, FloorID: "floor-1"})
	require.NoError(t, err)
	assert.Equal(t, 96, room.Capacity)
	assert.Equal(t, "floor-1", room.FloorID)
}

func TestRoomServiceUpdateNotFound(t *testing.T) {
	svc := newTestRoomService(&mockRoomRepo{})

	_, err := svc.Update(context.Background(), "missing", RoomRequest{RoomNumber: "101", RoomType: models.RoomType8x8, FloorID: "floor-1"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}
