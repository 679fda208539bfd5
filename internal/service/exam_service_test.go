package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/repository"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type mockExamRepo struct {
	exams       map[string]*models.Exam
	findCalls   int
	created     *models.Exam
	updated     *models.Exam
	createErr   error
	updateErr   error
	overlap     bool
	lastOverlap models.OverlapQuery
	deleted     []string
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	var out []models.Exam
	for _, e := range m.exams {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	m.findCalls++
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) ListBySubject(ctx context.Context, subjectID string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range m.exams {
		if e.SubjectID == subjectID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockExamRepo) ListByType(ctx context.Context, examType models.ExamType) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range m.exams {
		if e.ExamType == examType {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockExamRepo) ListBySection(ctx context.Context, sectionID string) ([]models.Exam, error) {
	return nil, nil
}

func (m *mockExamRepo) HasOverlap(ctx context.Context, q models.OverlapQuery) (bool, error) {
	m.lastOverlap = q
	if len(q.SectionIDs) == 0 {
		return false, nil
	}
	return m.overlap, nil
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = exam
	return nil
}

func (m *mockExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = exam
	return nil
}

func (m *mockExamRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSubjectFinder map[string]*models.Subject

func (m mockSubjectFinder) FindByID(_ context.Context, id string) (*models.Subject, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockProgramFinder map[string]*models.Program

func (m mockProgramFinder) FindByID(_ context.Context, id string) (*models.Program, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type mockYearFinder map[string]*models.Year

func (m mockYearFinder) FindByID(_ context.Context, id string) (*models.Year, error) {
	if y, ok := m[id]; ok {
		return y, nil
	}
	return nil, sql.ErrNoRows
}

type mockBranchFinder map[string]*models.Branch

func (m mockBranchFinder) FindByID(_ context.Context, id string) (*models.Branch, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

type mockSectionFinder map[string]*models.Section

func (m mockSectionFinder) FindByID(_ context.Context, id string) (*models.Section, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type stubExamCache struct {
	store    map[string][]byte
	patterns []string
}

func (s *stubExamCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubExamCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubExamCache) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	s.store = nil
	return nil
}

func newTestExamService(repo *mockExamRepo) *ExamService {
	return NewExamService(
		repo,
		mockSubjectFinder{"sub-1": {ID: "sub-1", Name: "Data Structures", Code: "CS101"}},
		mockProgramFinder{"prog-1": {ID: "prog-1", Name: "B.Tech"}},
		mockYearFinder{"year-1": {ID: "year-1", Name: "Second Year"}},
		mockBranchFinder{"br-1": {ID: "br-1", Name: "CSE"}},
		mockSectionFinder{
			"sec-1": {ID: "sec-1", Name: "A", FormattedName: "CSE - A"},
			"sec-2": {ID: "sec-2", Name: "B", FormattedName: "CSE - B"},
		},
		nil,
		zap.NewNop(),
	)
}

func validExamRequest() ExamRequest {
	return ExamRequest{
		ExamDate:   "2026-03-10",
		StartTime:  "09:00",
		EndTime:    "11:00",
		SubjectID:  "sub-1",
		ExamType:   "MIDTERM",
		SetType:    "SET1",
		ProgramID:  "prog-1",
		YearID:     "year-1",
		BranchIDs:  []string{"br-1"},
		SectionIDs: []string{"sec-1", "sec-2"},
	}
}

func TestExamServiceCreateDerivesName(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	detail, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, "CS101 - Data Structures - MIDTERM (2026-03-10)", repo.created.Name)
	assert.Equal(t, "CS101", detail.SubjectCode)
	assert.Equal(t, "B.Tech", detail.ProgramName)
	assert.Equal(t, []string{"CSE"}, detail.BranchNames)
	assert.Equal(t, []string{"CSE - A", "CSE - B"}, detail.SectionNames)
}

func TestExamServiceCreateKeepsExplicitName(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.Name = "Midterm Week 1"
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Midterm Week 1", repo.created.Name)
}

func TestExamServiceCreateSchedulingConflict(t *testing.T) {
	repo := &mockExamRepo{createErr: repository.ErrOverlappingExam}
	svc := newTestExamService(repo)

	_, err := svc.Create(context.Background(), validExamRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "There is an overlapping exam scheduled for the same date and time for one or more sections", appErr.Message)
}

func TestExamServiceCreateUnknownSubject(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.SubjectID = "sub-missing"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, "subject sub-missing not found", appErr.Message)
	assert.Nil(t, repo.created)
}

func TestExamServiceCreateUnknownSection(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.SectionIDs = []string{"sec-1", "sec-ghost"}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, "section sec-ghost not found", appErr.Message)
}

func TestExamServiceCreateInvalidWindow(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.StartTime = "11:00"
	req.EndTime = "09:00"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)

	req = validExamRequest()
	req.StartTime = "9:00"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)

	req = validExamRequest()
	req.ExamDate = "10-03-2026"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
}

func TestExamServiceCreateUnknownEnums(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.ExamType = "QUIZ"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)

	req = validExamRequest()
	req.SetType = "SET9"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
}

func TestExamServiceCreateWithoutSections(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.SectionIDs = nil
	detail, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Empty(t, detail.SectionIDs)
}

func TestExamServiceUpdatePreservesIdentity(t *testing.T) {
	existing := &models.Exam{
		ID:        "exam-1",
		Name:      "old",
		ExamDate:  "2026-03-01",
		StartTime: "09:00",
		EndTime:   "10:00",
		SubjectID: "sub-1",
		ExamType:  models.ExamTypeMidterm,
		SetType:   models.SetTypeNone,
		ProgramID: "prog-1",
		YearID:    "year-1",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	repo := &mockExamRepo{exams: map[string]*models.Exam{"exam-1": existing}}
	svc := newTestExamService(repo)

	req := validExamRequest()
	req.Name = "rescheduled"
	detail, err := svc.Update(context.Background(), "exam-1", req)
	require.NoError(t, err)
	require.NotNil(t, repo.updated)

	assert.Equal(t, "exam-1", repo.updated.ID)
	assert.Equal(t, existing.CreatedAt, repo.updated.CreatedAt)
	assert.Equal(t, "rescheduled", detail.Name)
}

func TestExamServiceUpdateSchedulingConflict(t *testing.T) {
	existing := &models.Exam{ID: "exam-1", SubjectID: "sub-1", ProgramID: "prog-1", YearID: "year-1"}
	repo := &mockExamRepo{
		exams:     map[string]*models.Exam{"exam-1": existing},
		updateErr: repository.ErrOverlappingExam,
	}
	svc := newTestExamService(repo)

	_, err := svc.Update(context.Background(), "exam-1", validExamRequest())
	require.Error(t, err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErrors.FromError(err).Code)
}

func TestExamServiceUpdateNotFound(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	_, err := svc.Update(context.Background(), "missing", validExamRequest())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
}

func TestExamServiceCheckOverlap(t *testing.T) {
	repo := &mockExamRepo{overlap: true}
	svc := newTestExamService(repo)

	overlap, err := svc.CheckOverlap(context.Background(), OverlapCheckRequest{
		ExamDate:      "2026-03-10",
		StartTime:     "09:00",
		EndTime:       "11:00",
		SectionIDs:    []string{"sec-1"},
		ExcludeExamID: "exam-1",
	})
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.Equal(t, "exam-1", repo.lastOverlap.ExcludeExamID)
	assert.Equal(t, []string{"sec-1"}, repo.lastOverlap.SectionIDs)
}

func TestExamServiceCheckOverlapEmptySections(t *testing.T) {
	repo := &mockExamRepo{overlap: true}
	svc := newTestExamService(repo)

	overlap, err := svc.CheckOverlap(context.Background(), OverlapCheckRequest{
		ExamDate:  "2026-03-10",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)
	assert.False(t, overlap)
}

func TestExamServiceGetUsesCache(t *testing.T) {
	exam := &models.Exam{
		ID: "exam-1", Name: "n", ExamDate: "2026-03-10", StartTime: "09:00", EndTime: "11:00",
		SubjectID: "sub-1", ExamType: models.ExamTypeMidterm, SetType: models.SetTypeSet1,
		ProgramID: "prog-1", YearID: "year-1",
		BranchIDs: []string{"br-1"}, SectionIDs: []string{"sec-1"},
	}
	repo := &mockExamRepo{exams: map[string]*models.Exam{"exam-1": exam}}
	cache := &stubExamCache{}
	svc := newTestExamService(repo).WithCache(cache, time.Minute)

	first, err := svc.Get(context.Background(), "exam-1")
	require.NoError(t, err)
	second, err := svc.Get(context.Background(), "exam-1")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.findCalls)
	assert.Equal(t, first.ID, second.ID)
}

func TestExamServiceWriteInvalidatesCache(t *testing.T) {
	repo := &mockExamRepo{}
	cache := &stubExamCache{}
	svc := newTestExamService(repo).WithCache(cache, time.Minute)

	_, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "exams:*", cache.patterns[0])
}

func TestExamServiceListByTypeRejectsUnknown(t *testing.T) {
	svc := newTestExamService(&mockExamRepo{})

	_, err := svc.ListByType(context.Background(), "WEEKLY")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
}

func TestExamServiceDeleteNotFound(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newTestExamService(repo)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
