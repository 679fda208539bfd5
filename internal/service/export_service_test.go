package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
)

type stubTimetableSource struct {
	details        []dto.ExamDetail
	bySubject      map[string][]dto.ExamDetail
	byType         map[string][]dto.ExamDetail
	subjectCalls   int
	typeCalls      int
	listPageCalls  int
	pageSizeSeen   int
	lastSubjectArg string
}

func (s *stubTimetableSource) List(ctx context.Context, filter models.ExamFilter) ([]dto.ExamDetail, *models.Pagination, error) {
	s.listPageCalls++
	s.pageSizeSeen = filter.PageSize
	return s.details, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(s.details)}, nil
}

func (s *stubTimetableSource) ListBySubject(ctx context.Context, subjectID string) ([]dto.ExamDetail, error) {
	s.subjectCalls++
	s.lastSubjectArg = subjectID
	return s.bySubject[subjectID], nil
}

func (s *stubTimetableSource) ListByType(ctx context.Context, examType string) ([]dto.ExamDetail, error) {
	s.typeCalls++
	return s.byType[examType], nil
}

type stubArchive struct {
	saved map[string][]byte
}

func (s *stubArchive) Save(filename string, data []byte) (string, error) {
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return filename, nil
}

func timetableDetail(name, date, start string) dto.ExamDetail {
	return dto.ExamDetail{
		Name:         name,
		ExamDate:     date,
		StartTime:    start,
		EndTime:      "11:00",
		ExamType:     models.ExamTypeMidterm,
		SetType:      models.SetTypeSet1,
		SubjectCode:  "CS101",
		SubjectName:  "Data Structures",
		ProgramName:  "B.Tech",
		YearName:     "Second Year",
		BranchNames:  []string{"CSE"},
		SectionNames: []string{"CSE - A", "CSE - B"},
	}
}

func TestExportServiceTimetableCSVSortsChronologically(t *testing.T) {
	source := &stubTimetableSource{details: []dto.ExamDetail{
		timetableDetail("late", "2026-03-12", "09:00"),
		timetableDetail("early same day", "2026-03-10", "09:00"),
		timetableDetail("later same day", "2026-03-10", "14:00"),
	}}
	svc := NewExportService(source, zap.NewNop())

	payload, filename, err := svc.TimetableCSV(context.Background(), TimetableRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "exam-timetable-"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, timetableHeaders, records[0])
	assert.Equal(t, "early same day", records[1][3])
	assert.Equal(t, "later same day", records[2][3])
	assert.Equal(t, "late", records[3][3])
	assert.Equal(t, "CSE - A, CSE - B", records[1][10])
}

func TestExportServiceCollectRouting(t *testing.T) {
	source := &stubTimetableSource{
		bySubject: map[string][]dto.ExamDetail{"sub-1": {timetableDetail("by subject", "2026-03-10", "09:00")}},
		byType:    map[string][]dto.ExamDetail{"MIDTERM": {timetableDetail("by type", "2026-03-10", "09:00")}},
	}
	svc := NewExportService(source, zap.NewNop())

	_, _, err := svc.TimetableCSV(context.Background(), TimetableRequest{SubjectID: "sub-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, source.subjectCalls)
	assert.Equal(t, "sub-1", source.lastSubjectArg)

	_, _, err = svc.TimetableCSV(context.Background(), TimetableRequest{ExamType: "MIDTERM"})
	require.NoError(t, err)
	assert.Equal(t, 1, source.typeCalls)

	// A date filter forces the paginated listing even when a type is set.
	_, _, err = svc.TimetableCSV(context.Background(), TimetableRequest{ExamType: "MIDTERM", ExamDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, source.listPageCalls)
	assert.Equal(t, 100, source.pageSizeSeen)
	assert.Equal(t, 1, source.typeCalls)
}

func TestExportServiceArchivesCopies(t *testing.T) {
	source := &stubTimetableSource{details: []dto.ExamDetail{timetableDetail("exam", "2026-03-10", "09:00")}}
	archive := &stubArchive{}
	svc := NewExportService(source, zap.NewNop()).WithArchive(archive)

	payload, filename, err := svc.TimetableCSV(context.Background(), TimetableRequest{})
	require.NoError(t, err)
	assert.Equal(t, payload, archive.saved[filename])

	pdfPayload, pdfName, err := svc.TimetablePDF(context.Background(), TimetableRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(pdfName, ".pdf"))
	assert.Equal(t, pdfPayload, archive.saved[pdfName])
	assert.Len(t, archive.saved, 2)
}
