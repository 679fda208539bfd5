package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type floorRepository interface {
	ListByBlock(ctx context.Context, blockID string) ([]models.Floor, error)
	FindByID(ctx context.Context, id string) (*models.Floor, error)
	ExistsByNumber(ctx context.Context, floorNumber int, blockID, excludeID string) (bool, error)
	Create(ctx context.Context, floor *models.Floor) error
	Update(ctx context.Context, floor *models.Floor) error
	Delete(ctx context.Context, id string) error
}

// FloorRequest describes payload for creating or updating a floor.
type FloorRequest struct {
	FloorNumber int    `json:"floor_number" validate:"min=0"`
	BlockID     string `json:"block_id" validate:"required"`
}

// FloorService coordinates floor management within blocks.
type FloorService struct {
	repo      floorRepository
	blocks    blockRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFloorService instantiates FloorService.
func NewFloorService(repo floorRepository, blocks blockRepository, validate *validator.Validate, logger *zap.Logger) *FloorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FloorService{repo: repo, blocks: blocks, validator: validate, logger: logger}
}

// ListByBlock returns the floors of a block.
func (s *FloorService) ListByBlock(ctx context.Context, blockID string) ([]models.Floor, error) {
	if _, err := s.blocks.FindByID(ctx, blockID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	floors, err := s.repo.ListByBlock(ctx, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list floors")
	}
	return floors, nil
}

// Create inserts a new floor after parent and uniqueness checks.
func (s *FloorService) Create(ctx context.Context, req FloorRequest) (*models.Floor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid floor payload")
	}

	if _, err := s.blocks.FindByID(ctx, req.BlockID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	taken, err := s.repo.ExistsByNumber(ctx, req.FloorNumber, req.BlockID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check floor number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "floor with this number already exists in the block")
	}

	floor := models.Floor{FloorNumber: req.FloorNumber, BlockID: req.BlockID}
	if err := s.repo.Create(ctx, &floor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create floor")
	}
	return &floor, nil
}

// Update modifies an existing floor, re-checking uniqueness only when the
// number or parent block actually changed.
func (s *FloorService) Update(ctx context.Context, id string, req FloorRequest) (*models.Floor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid floor payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	if _, err := s.blocks.FindByID(ctx, req.BlockID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	if req.FloorNumber != existing.FloorNumber || req.BlockID != existing.BlockID {
		taken, err := s.repo.ExistsByNumber(ctx, req.FloorNumber, req.BlockID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check floor number")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "floor with this number already exists in the block")
		}
	}

	existing.FloorNumber = req.FloorNumber
	existing.BlockID = req.BlockID
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update floor")
	}
	return existing, nil
}

// Delete removes a floor.
func (s *FloorService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete floor")
	}
	return nil
}
