package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type invigilatorRepository interface {
	List(ctx context.Context) ([]models.Invigilator, error)
	FindByID(ctx context.Context, id string) (*models.Invigilator, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	ExistsByEmployeeID(ctx context.Context, employeeID, excludeID string) (bool, error)
	Create(ctx context.Context, invigilator *models.Invigilator) error
	Update(ctx context.Context, invigilator *models.Invigilator) error
	Delete(ctx context.Context, id string) error
}

// InvigilatorRequest describes payload for creating or updating an invigilator.
type InvigilatorRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	EmployeeID  string `json:"employee_id" validate:"required"`
	Department  string `json:"department" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Designation string `json:"designation"`
	Available   *bool  `json:"available"`
}

// InvigilatorService coordinates the invigilator directory. Assignment of
// invigilators to exams is handled elsewhere; this only manages the roster.
type InvigilatorService struct {
	repo      invigilatorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInvigilatorService instantiates InvigilatorService.
func NewInvigilatorService(repo invigilatorRepository, validate *validator.Validate, logger *zap.Logger) *InvigilatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvigilatorService{repo: repo, validator: validate, logger: logger}
}

// List returns all invigilators.
func (s *InvigilatorService) List(ctx context.Context) ([]models.Invigilator, error) {
	invigilators, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invigilators")
	}
	return invigilators, nil
}

// Create inserts a new invigilator after email and employee id checks.
func (s *InvigilatorService) Create(ctx context.Context, req InvigilatorRequest) (*models.Invigilator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invigilator payload")
	}

	if err := s.checkUnique(ctx, req, ""); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	invigilator := models.Invigilator{
		Name:        req.Name,
		Email:       req.Email,
		EmployeeID:  req.EmployeeID,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Designation: req.Designation,
		Available:   available,
	}
	if err := s.repo.Create(ctx, &invigilator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invigilator")
	}
	return &invigilator, nil
}

// Update modifies an existing invigilator.
func (s *InvigilatorService) Update(ctx context.Context, id string, req InvigilatorRequest) (*models.Invigilator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invigilator payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invigilator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invigilator")
	}

	if err := s.checkUnique(ctx, req, id); err != nil {
		return nil, err
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.EmployeeID = req.EmployeeID
	existing.Department = req.Department
	existing.PhoneNumber = req.PhoneNumber
	existing.Designation = req.Designation
	if req.Available != nil {
		existing.Available = *req.Available
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invigilator")
	}
	return existing, nil
}

// Delete removes an invigilator.
func (s *InvigilatorService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "invigilator not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invigilator")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete invigilator")
	}
	return nil
}

func (s *InvigilatorService) checkUnique(ctx context.Context, req InvigilatorRequest, excludeID string) error {
	emailTaken, err := s.repo.ExistsByEmail(ctx, req.Email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check invigilator email")
	}
	if emailTaken {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "invigilator with this email already exists")
	}

	idTaken, err := s.repo.ExistsByEmployeeID(ctx, req.EmployeeID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check invigilator employee id")
	}
	if idTaken {
		return appErrors.Clone(appErrors.ErrDuplicateKey, "invigilator with this employee id already exists")
	}
	return nil
}
