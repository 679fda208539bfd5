package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/repository"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	ListBySubject(ctx context.Context, subjectID string) ([]models.Exam, error)
	ListByType(ctx context.Context, examType models.ExamType) ([]models.Exam, error)
	ListBySection(ctx context.Context, sectionID string) ([]models.Exam, error)
	HasOverlap(ctx context.Context, q models.OverlapQuery) (bool, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
}

type examCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type examMetrics interface {
	RecordCacheOperation(hit bool)
	RecordOverlapCheck(conflict bool)
}

const examCachePattern = "exams:*"

// ExamRequest describes payload for scheduling or rescheduling an exam.
// ExamDate uses the "2006-01-02" layout, the times use zero-padded "15:04".
// Name may be blank; a display name is derived from the subject in that case.
type ExamRequest struct {
	Name       string   `json:"name"`
	ExamDate   string   `json:"exam_date" validate:"required"`
	StartTime  string   `json:"start_time" validate:"required"`
	EndTime    string   `json:"end_time" validate:"required"`
	SubjectID  string   `json:"subject_id" validate:"required"`
	ExamType   string   `json:"exam_type" validate:"required"`
	SetType    string   `json:"set_type" validate:"required"`
	ProgramID  string   `json:"program_id" validate:"required"`
	YearID     string   `json:"year_id" validate:"required"`
	BranchIDs  []string `json:"branch_ids" validate:"required,min=1"`
	SectionIDs []string `json:"section_ids"`
}

// OverlapCheckRequest is the standalone conflict probe. ExcludeExamID is set
// when probing a reschedule so the exam does not collide with itself.
type OverlapCheckRequest struct {
	ExamDate      string   `json:"exam_date" validate:"required"`
	StartTime     string   `json:"start_time" validate:"required"`
	EndTime       string   `json:"end_time" validate:"required"`
	SectionIDs    []string `json:"section_ids"`
	ExcludeExamID string   `json:"exclude_exam_id"`
}

type cachedExamList struct {
	Items []dto.ExamDetail `json:"items"`
	Total int              `json:"total"`
}

// ExamService owns exam scheduling: reference resolution, the overlap rule,
// derived naming and read caching.
type ExamService struct {
	repo      examRepository
	assembler *examAssembler
	cache     examCache
	cacheTTL  time.Duration
	metrics   examMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService instantiates ExamService. Reads are uncached until WithCache
// is applied.
func NewExamService(
	repo examRepository,
	subjects subjectFinder,
	programs programFinder,
	years yearFinder,
	branches branchFinder,
	sections sectionFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{
		repo:      repo,
		assembler: newExamAssembler(subjects, programs, years, branches, sections),
		validator: validate,
		logger:    logger,
	}
}

// WithCache enables read caching of exam aggregates with the given TTL.
func (s *ExamService) WithCache(cache examCache, ttl time.Duration) *ExamService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// WithMetrics attaches instrumentation for cache lookups and overlap checks.
func (s *ExamService) WithMetrics(m examMetrics) *ExamService {
	s.metrics = m
	return s
}

// Get returns one exam aggregate.
func (s *ExamService) Get(ctx context.Context, id string) (*dto.ExamDetail, error) {
	key := "exams:detail:" + id
	var cached dto.ExamDetail
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	detail, err := s.assembler.detail(ctx, exam)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, detail)
	return detail, nil
}

// List returns exam aggregates matching the filter, newest first, with
// pagination totals.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]dto.ExamDetail, *models.Pagination, error) {
	if filter.ExamType != "" && !models.ValidExamType(models.ExamType(filter.ExamType)) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", filter.ExamType))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	key := fmt.Sprintf("exams:list:%s:%s:%s:%d:%d", filter.SubjectID, filter.ExamType, filter.ExamDate, page, size)
	var cached cachedExamList
	if s.cacheGet(ctx, key, &cached) {
		return cached.Items, &models.Pagination{Page: page, PageSize: size, TotalCount: cached.Total}, nil
	}

	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	details, err := s.assembler.details(ctx, exams)
	if err != nil {
		return nil, nil, err
	}

	s.cacheSet(ctx, key, cachedExamList{Items: details, Total: total})
	return details, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListBySubject returns a subject's exams in chronological order.
func (s *ExamService) ListBySubject(ctx context.Context, subjectID string) ([]dto.ExamDetail, error) {
	if _, err := s.assembler.subject(ctx, subjectID); err != nil {
		return nil, err
	}
	return s.cachedDetails(ctx, "exams:subject:"+subjectID, func() ([]models.Exam, error) {
		return s.repo.ListBySubject(ctx, subjectID)
	})
}

// ListByType returns exams of one exam type in chronological order.
func (s *ExamService) ListByType(ctx context.Context, examType string) ([]dto.ExamDetail, error) {
	t := models.ExamType(examType)
	if !models.ValidExamType(t) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", examType))
	}
	return s.cachedDetails(ctx, "exams:type:"+examType, func() ([]models.Exam, error) {
		return s.repo.ListByType(ctx, t)
	})
}

// ListBySection returns a section's exams in chronological order.
func (s *ExamService) ListBySection(ctx context.Context, sectionID string) ([]dto.ExamDetail, error) {
	if _, err := s.assembler.sectionNames(ctx, []string{sectionID}); err != nil {
		return nil, err
	}
	return s.cachedDetails(ctx, "exams:section:"+sectionID, func() ([]models.Exam, error) {
		return s.repo.ListBySection(ctx, sectionID)
	})
}

// CheckOverlap reports whether the candidate slot collides with any existing
// exam sharing at least one section. An empty section list never conflicts.
func (s *ExamService) CheckOverlap(ctx context.Context, req OverlapCheckRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid overlap query")
	}
	if err := validateSlot(req.ExamDate, req.StartTime, req.EndTime); err != nil {
		return false, err
	}

	overlap, err := s.repo.HasOverlap(ctx, models.OverlapQuery{
		ExamDate:      req.ExamDate,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		SectionIDs:    req.SectionIDs,
		ExcludeExamID: req.ExcludeExamID,
	})
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check exam overlap")
	}
	if s.metrics != nil {
		s.metrics.RecordOverlapCheck(overlap)
	}
	return overlap, nil
}

// Create schedules a new exam. The overlap rule is enforced atomically with
// the write; a collision surfaces as a scheduling conflict.
func (s *ExamService) Create(ctx context.Context, req ExamRequest) (*dto.ExamDetail, error) {
	exam, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrOverlappingExam) {
			if s.metrics != nil {
				s.metrics.RecordOverlapCheck(true)
			}
			return nil, appErrors.ErrSchedulingConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.invalidateCache(ctx)

	s.logger.Info("exam scheduled",
		zap.String("exam_id", exam.ID),
		zap.String("exam_date", exam.ExamDate),
		zap.Int("sections", len(exam.SectionIDs)))

	return s.assembler.detail(ctx, exam)
}

// Update reschedules an exam, replacing every field. The exam's own slot is
// excluded from the overlap check so it may keep its current window.
func (s *ExamService) Update(ctx context.Context, id string, req ExamRequest) (*dto.ExamDetail, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	exam, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	exam.ID = existing.ID
	exam.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrOverlappingExam) {
			if s.metrics != nil {
				s.metrics.RecordOverlapCheck(true)
			}
			return nil, appErrors.ErrSchedulingConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	s.invalidateCache(ctx)

	return s.assembler.detail(ctx, exam)
}

// Delete removes an exam and its section and branch links.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	s.invalidateCache(ctx)
	return nil
}

// prepare validates a write payload, resolves every referenced entity and
// builds the record to persist, deriving the display name when blank.
func (s *ExamService) prepare(ctx context.Context, req ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	examType := models.ExamType(req.ExamType)
	if !models.ValidExamType(examType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam type %q", req.ExamType))
	}
	setType := models.SetType(req.SetType)
	if !models.ValidSetType(setType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown set type %q", req.SetType))
	}
	if err := validateSlot(req.ExamDate, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	subject, err := s.assembler.subject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.assembler.program(ctx, req.ProgramID); err != nil {
		return nil, err
	}
	if _, err := s.assembler.year(ctx, req.YearID); err != nil {
		return nil, err
	}
	if _, err := s.assembler.branchNames(ctx, req.BranchIDs); err != nil {
		return nil, err
	}
	if _, err := s.assembler.sectionNames(ctx, req.SectionIDs); err != nil {
		return nil, err
	}

	if len(req.SectionIDs) == 0 {
		s.logger.Warn("exam scheduled without sections, overlap rule cannot apply",
			zap.String("subject_id", req.SubjectID),
			zap.String("exam_date", req.ExamDate))
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s - %s - %s (%s)", subject.Code, subject.Name, examType, req.ExamDate)
	}

	return &models.Exam{
		Name:       name,
		ExamDate:   req.ExamDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		SubjectID:  req.SubjectID,
		ExamType:   examType,
		SetType:    setType,
		ProgramID:  req.ProgramID,
		YearID:     req.YearID,
		BranchIDs:  append([]string{}, req.BranchIDs...),
		SectionIDs: append([]string{}, req.SectionIDs...),
	}, nil
}

func (s *ExamService) cachedDetails(ctx context.Context, key string, load func() ([]models.Exam, error)) ([]dto.ExamDetail, error) {
	var cached []dto.ExamDetail
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	exams, err := load()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	details, err := s.assembler.details(ctx, exams)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, details)
	return details, nil
}

func (s *ExamService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(true)
		}
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("exam cache read failed", zap.String("key", key), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(false)
	}
	return false
}

func (s *ExamService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("exam cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ExamService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, examCachePattern); err != nil {
		s.logger.Warn("exam cache invalidation failed", zap.Error(err))
	}
}

// validateSlot checks date and time layouts and window ordering. Times are
// zero-padded 24h strings, so lexical order matches chronological order.
func validateSlot(examDate, startTime, endTime string) error {
	if _, err := time.Parse("2006-01-02", examDate); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid exam date %q, expected YYYY-MM-DD", examDate))
	}
	if !validClockTime(startTime) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start time %q, expected HH:MM", startTime))
	}
	if !validClockTime(endTime) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end time %q, expected HH:MM", endTime))
	}
	if startTime >= endTime {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return nil
}

func validClockTime(v string) bool {
	if len(v) != 5 {
		return false
	}
	_, err := time.Parse("15:04", v)
	return err == nil
}
