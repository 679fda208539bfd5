package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

func newExamRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func examRows(exams ...models.Exam) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "exam_date", "start_time", "end_time", "subject_id",
		"exam_type", "set_type", "program_id", "year_id", "branch_ids", "section_ids",
		"created_at", "updated_at",
	})
	for _, e := range exams {
		rows.AddRow(e.ID, e.Name, e.ExamDate, e.StartTime, e.EndTime, e.SubjectID,
			string(e.ExamType), string(e.SetType), e.ProgramID, e.YearID,
			"{"+joinIDs(e.BranchIDs)+"}", "{"+joinIDs(e.SectionIDs)+"}",
			e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}

func TestExamRepositoryHasOverlap(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("2026-03-10", "09:00", "11:00", sqlmock.AnyArg(), "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), models.OverlapQuery{
		ExamDate:   "2026-03-10",
		StartTime:  "09:00",
		EndTime:    "11:00",
		SectionIDs: []string{"sec-1", "sec-2"},
	})
	require.NoError(t, err)
	require.True(t, overlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryHasOverlapEmptySections(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)

	// No SQL expectation: an empty section list never reaches the database.
	overlap, err := repo.HasOverlap(context.Background(), models.OverlapQuery{
		ExamDate:  "2026-03-10",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)
	require.False(t, overlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryCreateRejectsOverlap(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Exam{
		Name:       "exam",
		ExamDate:   "2026-03-10",
		StartTime:  "09:00",
		EndTime:    "11:00",
		SubjectID:  "sub-1",
		ExamType:   models.ExamTypeMidterm,
		SetType:    models.SetTypeNone,
		ProgramID:  "prog-1",
		YearID:     "year-1",
		SectionIDs: []string{"sec-1"},
	})
	require.ErrorIs(t, err, ErrOverlappingExam)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryCreateInsertsLinksInOrder(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exams")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_branches")).
		WithArgs(sqlmock.AnyArg(), "br-1", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_sections")).
		WithArgs(sqlmock.AnyArg(), "sec-2", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_sections")).
		WithArgs(sqlmock.AnyArg(), "sec-1", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	exam := &models.Exam{
		Name:       "exam",
		ExamDate:   "2026-03-10",
		StartTime:  "09:00",
		EndTime:    "11:00",
		SubjectID:  "sub-1",
		ExamType:   models.ExamTypeSemester,
		SetType:    models.SetTypeSet2,
		ProgramID:  "prog-1",
		YearID:     "year-1",
		BranchIDs:  []string{"br-1"},
		SectionIDs: []string{"sec-2", "sec-1"},
	}
	require.NoError(t, repo.Create(context.Background(), exam))
	require.NotEmpty(t, exam.ID)
	require.False(t, exam.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryUpdateExcludesSelf(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("2026-03-10", "09:00", "11:00", sqlmock.AnyArg(), "exam-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE exams SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_branches")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_sections")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO exam_sections")).
		WithArgs("exam-1", "sec-1", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Exam{
		ID:         "exam-1",
		Name:       "exam",
		ExamDate:   "2026-03-10",
		StartTime:  "09:00",
		EndTime:    "11:00",
		SubjectID:  "sub-1",
		ExamType:   models.ExamTypeMidterm,
		SetType:    models.SetTypeNone,
		ProgramID:  "prog-1",
		YearID:     "year-1",
		SectionIDs: []string{"sec-1"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams e WHERE e.id = $1")).
		WithArgs("exam-1").
		WillReturnRows(examRows(models.Exam{
			ID: "exam-1", Name: "exam", ExamDate: "2026-03-10", StartTime: "09:00", EndTime: "11:00",
			SubjectID: "sub-1", ExamType: models.ExamTypeMidterm, SetType: models.SetTypeSet1,
			ProgramID: "prog-1", YearID: "year-1",
			BranchIDs: []string{"br-1"}, SectionIDs: []string{"sec-1", "sec-2"},
			CreatedAt: now, UpdatedAt: now,
		}))

	exam, err := repo.FindByID(context.Background(), "exam-1")
	require.NoError(t, err)
	require.Equal(t, "exam-1", exam.ID)
	require.Equal(t, []string{"sec-1", "sec-2"}, []string(exam.SectionIDs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryDeleteClearsLinks(t *testing.T) {
	db, mock, cleanup := newExamRepoMock(t)
	defer cleanup()

	repo := NewExamRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_branches")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_sections")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exams")).
		WithArgs("exam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "exam-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
