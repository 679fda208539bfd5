package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/internal/repository"
	"github.com/noah-isme/exam-logistics-api/internal/service"
	"github.com/noah-isme/exam-logistics-api/pkg/response"
)

type examRepoStub struct {
	exams     map[string]*models.Exam
	createErr error
	overlap   bool
	deleted   []string
}

func (m *examRepoStub) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	var out []models.Exam
	for _, e := range m.exams {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (m *examRepoStub) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return exam, nil
}

func (m *examRepoStub) ListBySubject(ctx context.Context, subjectID string) ([]models.Exam, error) {
	return nil, nil
}

func (m *examRepoStub) ListByType(ctx context.Context, examType models.ExamType) ([]models.Exam, error) {
	return nil, nil
}

func (m *examRepoStub) ListBySection(ctx context.Context, sectionID string) ([]models.Exam, error) {
	return nil, nil
}

func (m *examRepoStub) HasOverlap(ctx context.Context, q models.OverlapQuery) (bool, error) {
	if len(q.SectionIDs) == 0 {
		return false, nil
	}
	return m.overlap, nil
}

func (m *examRepoStub) Create(ctx context.Context, exam *models.Exam) error {
	if m.createErr != nil {
		return m.createErr
	}
	exam.ID = "exam-new"
	return nil
}

func (m *examRepoStub) Update(ctx context.Context, exam *models.Exam) error {
	return nil
}

func (m *examRepoStub) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type subjectFinderStub map[string]*models.Subject

func (m subjectFinderStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type programFinderStub map[string]*models.Program

func (m programFinderStub) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type yearFinderStub map[string]*models.Year

func (m yearFinderStub) FindByID(ctx context.Context, id string) (*models.Year, error) {
	if y, ok := m[id]; ok {
		return y, nil
	}
	return nil, sql.ErrNoRows
}

type branchFinderStub map[string]*models.Branch

func (m branchFinderStub) FindByID(ctx context.Context, id string) (*models.Branch, error) {
	if b, ok := m[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

type sectionFinderStub map[string]*models.Section

func (m sectionFinderStub) FindByID(ctx context.Context, id string) (*models.Section, error) {
	if s, ok := m[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func newExamHandlerFixture(repo *examRepoStub) *ExamHandler {
	svc := service.NewExamService(
		repo,
		subjectFinderStub{"sub-1": {ID: "sub-1", Name: "Data Structures", Code: "CS101"}},
		programFinderStub{"prog-1": {ID: "prog-1", Name: "B.Tech"}},
		yearFinderStub{"year-1": {ID: "year-1", Name: "Second Year"}},
		branchFinderStub{"br-1": {ID: "br-1", Name: "CSE"}},
		sectionFinderStub{"sec-1": {ID: "sec-1", Name: "A", FormattedName: "CSE - A"}},
		nil,
		zap.NewNop(),
	)
	return NewExamHandler(svc)
}

func examPayload() map[string]interface{} {
	return map[string]interface{}{
		"exam_date":   "2026-03-10",
		"start_time":  "09:00",
		"end_time":    "11:00",
		"subject_id":  "sub-1",
		"exam_type":   "MIDTERM",
		"set_type":    "SET1",
		"program_id":  "prog-1",
		"year_id":     "year-1",
		"branch_ids":  []string{"br-1"},
		"section_ids": []string{"sec-1"},
	}
}

func postJSON(t *testing.T, target string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestExamHandlerCreate(t *testing.T) {
	repo := &examRepoStub{exams: map[string]*models.Exam{}}
	handler := newExamHandlerFixture(repo)
	c, w := postJSON(t, "/exams", examPayload())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "exam-new", body.Data.ID)
	assert.Equal(t, "CS101 - Data Structures - MIDTERM (2026-03-10)", body.Data.Name)
}

func TestExamHandlerCreateSchedulingConflict(t *testing.T) {
	repo := &examRepoStub{exams: map[string]*models.Exam{}, createErr: repository.ErrOverlappingExam}
	handler := newExamHandlerFixture(repo)
	c, w := postJSON(t, "/exams", examPayload())

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SCHEDULING_CONFLICT", envelope.Error.Code)
	assert.Equal(t, "There is an overlapping exam scheduled for the same date and time for one or more sections", envelope.Error.Message)
}

func TestExamHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newExamHandlerFixture(&examRepoStub{exams: map[string]*models.Exam{}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/exams", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestExamHandlerCheckOverlap(t *testing.T) {
	repo := &examRepoStub{exams: map[string]*models.Exam{}, overlap: true}
	handler := newExamHandlerFixture(repo)
	c, w := postJSON(t, "/overlap-checks", map[string]interface{}{
		"exam_date":   "2026-03-10",
		"start_time":  "09:00",
		"end_time":    "11:00",
		"section_ids": []string{"sec-1"},
	})

	handler.CheckOverlap(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Overlap bool `json:"overlap"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Overlap)
}

func TestExamHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newExamHandlerFixture(&examRepoStub{exams: map[string]*models.Exam{}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/exams/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestExamHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &examRepoStub{exams: map[string]*models.Exam{
		"exam-1": {ID: "exam-1", Name: "exam", ExamDate: "2026-03-10", StartTime: "09:00", EndTime: "11:00", SubjectID: "sub-1", ExamType: models.ExamTypeMidterm, SetType: models.SetTypeSet1, ProgramID: "prog-1", YearID: "year-1"},
	}}
	handler := newExamHandlerFixture(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/exams/exam-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"exam-1"}, repo.deleted)
}

func TestExamHandlerListByTypeRejectsUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newExamHandlerFixture(&examRepoStub{exams: map[string]*models.Exam{}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/exam-types/QUIZ/exams", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "type", Value: "QUIZ"}}

	handler.ListByType(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
