package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type sectionRepository interface {
	ListByBranch(ctx context.Context, branchID string) ([]models.Section, error)
	FindByID(ctx context.Context, id string) (*models.Section, error)
	ExistsByName(ctx context.Context, name, branchID, excludeID string) (bool, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id string) error
}

// SectionRequest describes payload for creating or updating a section.
type SectionRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	BranchID string `json:"branch_id" validate:"required"`
}

// SectionService coordinates section management. The formatted name is a pure
// function of the branch name and section name, rewritten on every mutation
// of either input.
type SectionService struct {
	repo      sectionRepository
	branches  branchRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService instantiates SectionService.
func NewSectionService(repo sectionRepository, branches branchRepository, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, branches: branches, validator: validate, logger: logger}
}

// ListByBranch returns the sections of a branch.
func (s *SectionService) ListByBranch(ctx context.Context, branchID string) ([]models.Section, error) {
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	sections, err := s.repo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// Create inserts a new section with its derived formatted name.
func (s *SectionService) Create(ctx context.Context, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	branch, err := s.branches.FindByID(ctx, req.BranchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, req.BranchID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "section with this name already exists in the branch")
	}

	section := models.Section{
		Name:          req.Name,
		FormattedName: models.FormatSectionName(branch.Name, req.Name),
		Capacity:      req.Capacity,
		BranchID:      req.BranchID,
	}
	if err := s.repo.Create(ctx, &section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return &section, nil
}

// Update modifies an existing section, recomputing the formatted name from
// the current branch.
func (s *SectionService) Update(ctx context.Context, id string, req SectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	branch, err := s.branches.FindByID(ctx, req.BranchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "branch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load branch")
	}

	if req.Name != existing.Name || req.BranchID != existing.BranchID {
		taken, err := s.repo.ExistsByName(ctx, req.Name, req.BranchID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "section with this name already exists in the branch")
		}
	}

	existing.Name = req.Name
	existing.FormattedName = models.FormatSectionName(branch.Name, req.Name)
	existing.Capacity = req.Capacity
	existing.BranchID = req.BranchID
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return existing, nil
}

// Delete removes a section.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	return nil
}
