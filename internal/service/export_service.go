package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-logistics-api/internal/dto"
	"github.com/noah-isme/exam-logistics-api/internal/models"
	"github.com/noah-isme/exam-logistics-api/pkg/export"
	appErrors "github.com/noah-isme/exam-logistics-api/pkg/errors"
)

type timetableSource interface {
	List(ctx context.Context, filter models.ExamFilter) ([]dto.ExamDetail, *models.Pagination, error)
	ListBySubject(ctx context.Context, subjectID string) ([]dto.ExamDetail, error)
	ListByType(ctx context.Context, examType string) ([]dto.ExamDetail, error)
}

// TimetableRequest narrows which exams go into an export. All fields are
// optional; an empty request exports every scheduled exam.
type TimetableRequest struct {
	SubjectID string
	ExamType  string
	ExamDate  string
}

type exportArchive interface {
	Save(filename string, data []byte) (string, error)
}

var timetableHeaders = []string{"Date", "Start", "End", "Exam", "Subject", "Type", "Set", "Program", "Year", "Branches", "Sections"}

// ExportService renders exam timetables as CSV or PDF documents.
type ExportService struct {
	exams   timetableSource
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	archive exportArchive
	logger  *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(exams timetableSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		exams:  exams,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// WithArchive keeps a copy of every rendered document in the given store.
func (s *ExportService) WithArchive(archive exportArchive) *ExportService {
	s.archive = archive
	return s
}

// TimetableCSV renders the matching exams as CSV. Returns the document bytes
// and a suggested filename.
func (s *ExportService) TimetableCSV(ctx context.Context, req TimetableRequest) ([]byte, string, error) {
	data, err := s.dataset(ctx, req)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable csv")
	}
	filename := exportFilename("csv")
	s.archiveCopy(filename, payload)
	return payload, filename, nil
}

// TimetablePDF renders the matching exams as a tabular PDF.
func (s *ExportService) TimetablePDF(ctx context.Context, req TimetableRequest) ([]byte, string, error) {
	data, err := s.dataset(ctx, req)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.pdf.Render(data)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable pdf")
	}
	filename := exportFilename("pdf")
	s.archiveCopy(filename, payload)
	return payload, filename, nil
}

// archiveCopy best-effort; an archive failure never fails the download.
func (s *ExportService) archiveCopy(filename string, payload []byte) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.Save(filename, payload); err != nil {
		s.logger.Warn("failed to archive export", zap.String("file", filename), zap.Error(err))
	}
}

func (s *ExportService) dataset(ctx context.Context, req TimetableRequest) (export.Dataset, error) {
	details, err := s.collect(ctx, req)
	if err != nil {
		return export.Dataset{}, err
	}

	// Timetables read top to bottom in chronological order regardless of how
	// the source listing sorts.
	sort.SliceStable(details, func(i, j int) bool {
		if details[i].ExamDate != details[j].ExamDate {
			return details[i].ExamDate < details[j].ExamDate
		}
		return details[i].StartTime < details[j].StartTime
	})

	rows := make([][]string, 0, len(details))
	for _, d := range details {
		rows = append(rows, []string{
			d.ExamDate,
			d.StartTime,
			d.EndTime,
			d.Name,
			d.SubjectCode + " " + d.SubjectName,
			string(d.ExamType),
			string(d.SetType),
			d.ProgramName,
			d.YearName,
			strings.Join(d.BranchNames, ", "),
			strings.Join(d.SectionNames, ", "),
		})
	}

	s.logger.Debug("timetable export assembled", zap.Int("exams", len(rows)))
	return export.Dataset{Title: "Exam Timetable", Headers: timetableHeaders, Rows: rows}, nil
}

func (s *ExportService) collect(ctx context.Context, req TimetableRequest) ([]dto.ExamDetail, error) {
	if req.SubjectID != "" {
		return s.exams.ListBySubject(ctx, req.SubjectID)
	}
	if req.ExamType != "" && req.ExamDate == "" {
		return s.exams.ListByType(ctx, req.ExamType)
	}

	filter := models.ExamFilter{ExamType: req.ExamType, ExamDate: req.ExamDate, PageSize: 100}
	var all []dto.ExamDetail
	for page := 1; ; page++ {
		filter.Page = page
		details, pagination, err := s.exams.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, details...)
		if len(all) >= pagination.TotalCount || len(details) == 0 {
			break
		}
	}
	return all, nil
}

func exportFilename(ext string) string {
	return "exam-timetable-" + time.Now().UTC().Format("20060102-150405") + "." + ext
}
