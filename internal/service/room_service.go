package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type roomRepository interface {
	ListByFloor(ctx context.Context, floorID string) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByNumber(ctx context.Context, roomNumber, floorID, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// RoomRequest describes payload for creating or updating a room. Layout and
// capacity are never accepted from the caller; they derive from the room type.
type RoomRequest struct {
	RoomNumber string          `json:"room_number" validate:"required"`
	RoomType   models.RoomType `json:"room_type" validate:"required"`
	FloorID    string          `json:"floor_id" validate:"required"`
}

// RoomService coordinates exam room management.
type RoomService struct {
	repo      roomRepository
	floors    floorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(repo roomRepository, floors floorRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, floors: floors, validator: validate, logger: logger}
}

// ListByFloor returns the rooms of a floor.
func (s *RoomService) ListByFloor(ctx context.Context, floorID string) ([]models.Room, error) {
	if _, err := s.floors.FindByID(ctx, floorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	rooms, err := s.repo.ListByFloor(ctx, floorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Create inserts a new room, deriving its layout from the room type.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	rows, cols, ok := req.RoomType.Dimensions()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedRoomType, "")
	}

	if _, err := s.floors.FindByID(ctx, req.FloorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	taken, err := s.repo.ExistsByNumber(ctx, req.RoomNumber, req.FloorID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "room with this number already exists on the floor")
	}

	room := models.Room{
		RoomNumber:  req.RoomNumber,
		FloorID:     req.FloorID,
		RoomType:    req.RoomType,
		RowCount:    rows,
		ColumnCount: cols,
		Capacity:    rows * cols,
	}
	if err := s.repo.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return &room, nil
}

// Update modifies an existing room, rewriting the derived layout columns from
// the requested room type. The floor assignment stays fixed.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	rows, cols, ok := req.RoomType.Dimensions()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedRoomType, "")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if req.RoomNumber != existing.RoomNumber {
		taken, err := s.repo.ExistsByNumber(ctx, req.RoomNumber, existing.FloorID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "room with this number already exists on the floor")
		}
	}

	existing.RoomNumber = req.RoomNumber
	existing.RoomType = req.RoomType
	existing.RowCount = rows
	existing.ColumnCount = cols
	existing.Capacity = rows * cols
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return existing, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}
