package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type branchRepository interface {
	ListByYear(ctx context.Context, yearID string) ([]models.Branch, error)
	FindByID(ctx context.Context, id string) (*models.Branch, error)
	ExistsByName(ctx context.Context, name, yearID, excludeID string) (bool, error)
	Create(ctx context.Context, branch *models.Branch) error
	Update(ctx context.Context, branch *models.Branch) error
	Delete(ctx context.Context, id string) error
}

// BranchRequest describes payload for creating or updating a branch.
type BranchRequest struct {
	Name   string `json:"name" validate:"required"`
	YearID string `json:"year_id" validate:"required"`
}

// BranchService coordinates branch management. Renaming a branch rewrites the
// formatted names of its sections through the repository transaction.
type BranchService struct {
	repo      branchRepository
	years     yearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBranchService instantiates BranchService.
func NewBranchService(repo branchRepository, years yearRepository, validate *validator.Validate, logger *zap.Logger) *BranchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchService{repo: repo, years: years, validator: validate, logger: logger}
}

// ListByYear returns the branches of a year.
func (s *BranchService) ListByYear(ctx context.Context, yearID string) ([]models.Branch, error) {
	if _, err := s.years.FindByID(ctx, yearID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	branches, err := s.repo.ListByYear(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list branches")
	}
	return branches, nil
}

// Create inserts a new branch after parent and uniqueness checks.
func (s *BranchService) Create(ctx context.Context, req BranchRequest) (*models.Branch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch payload")
	}

	if _, err := s.years.FindByID(ctx, req.YearID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, req.YearID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check branch name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "branch with this name already exists in the year")
	}

	branch := models.Branch{Name: req.Name, YearID: req.YearID}
	if err := s.repo.Create(ctx, &branch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create branch")
	}
	return &branch, nil
}

// Update modifies an existing branch, re-checking uniqueness only when the
// name or parent year changed.
func (s *BranchService) Update(ctx context.Context, id string, req BranchRequest) (*models.Branch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid branch payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	if _, err := s.years.FindByID(ctx, req.YearID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	if req.Name != existing.Name || req.YearID != existing.YearID {
		taken, err := s.repo.ExistsByName(ctx, req.Name, req.YearID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check branch name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "branch with this name already exists in the year")
		}
	}

	existing.Name = req.Name
	existing.YearID = req.YearID
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update branch")
	}
	return existing, nil
}

// Delete removes a branch.
func (s *BranchService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete branch")
	}
	return nil
}
