package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type blockRepository interface {
	List(ctx context.Context) ([]models.Block, error)
	FindByID(ctx context.Context, id string) (*models.Block, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, block *models.Block) error
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id string) error
}

// BlockRequest describes payload for creating or updating a block.
type BlockRequest struct {
	Name string `json:"name" validate:"required"`
}

// BlockService coordinates campus block management.
type BlockService struct {
	repo      blockRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlockService instantiates BlockService.
func NewBlockService(repo blockRepository, validate *validator.Validate, logger *zap.Logger) *BlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockService{repo: repo, validator: validate, logger: logger}
}

// List returns all blocks.
func (s *BlockService) List(ctx context.Context) ([]models.Block, error) {
	blocks, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	return blocks, nil
}

// Create inserts a new block after the name uniqueness check.
func (s *BlockService) Create(ctx context.Context, req BlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check block name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "block with this name already exists")
	}

	block := models.Block{Name: req.Name}
	if err := s.repo.Create(ctx, &block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}
	return &block, nil
}

// Update modifies an existing block. The uniqueness check is skipped when the
// name is unchanged, so a record never conflicts with itself.
func (s *BlockService) Update(ctx context.Context, id string, req BlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	if req.Name != existing.Name {
		taken, err := s.repo.ExistsByName(ctx, req.Name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check block name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "block with this name already exists")
		}
	}

	existing.Name = req.Name
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update block")
	}
	return existing, nil
}

// Delete removes a block.
func (s *BlockService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load block")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}
	return nil
}
