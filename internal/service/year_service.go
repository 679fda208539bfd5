package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type yearRepository interface {
	ListByProgram(ctx context.Context, programID string) ([]models.Year, error)
	FindByID(ctx context.Context, id string) (*models.Year, error)
	ExistsByName(ctx context.Context, name, programID, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.Year) error
	Update(ctx context.Context, year *models.Year) error
	Delete(ctx context.Context, id string) error
}

// YearRequest describes payload for creating or updating an academic year.
type YearRequest struct {
	Name       string `json:"name" validate:"required"`
	YearNumber int    `json:"year_number" validate:"required,min=1,max=10"`
	ProgramID  string `json:"program_id" validate:"required"`
}

// YearService coordinates academic year management.
type YearService struct {
	repo      yearRepository
	programs  programRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewYearService instantiates YearService.
func NewYearService(repo yearRepository, programs programRepository, validate *validator.Validate, logger *zap.Logger) *YearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YearService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// ListByProgram returns the years of a program.
func (s *YearService) ListByProgram(ctx context.Context, programID string) ([]models.Year, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	years, err := s.repo.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list years")
	}
	return years, nil
}

// Create inserts a new year after parent and uniqueness checks.
func (s *YearService) Create(ctx context.Context, req YearRequest) (*models.Year, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year payload")
	}

	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	taken, err := s.repo.ExistsByName(ctx, req.Name, req.ProgramID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check year name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "year with this name already exists in the program")
	}

	year := models.Year{Name: req.Name, YearNumber: req.YearNumber, ProgramID: req.ProgramID}
	if err := s.repo.Create(ctx, &year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create year")
	}
	return &year, nil
}

// Update modifies an existing year, re-checking uniqueness only when the name
// or parent program changed.
func (s *YearService) Update(ctx context.Context, id string, req YearRequest) (*models.Year, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid year payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	if req.Name != existing.Name || req.ProgramID != existing.ProgramID {
		taken, err := s.repo.ExistsByName(ctx, req.Name, req.ProgramID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check year name")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrDuplicateKey, "year with this name already exists in the program")
		}
	}

	existing.Name = req.Name
	existing.YearNumber = req.YearNumber
	existing.ProgramID = req.ProgramID
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update year")
	}
	return existing, nil
}

// Delete removes a year.
func (s *YearService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete year")
	}
	return nil
}
