package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// ErrOverlappingExam is returned when the guarded write detects a scheduling
// conflict inside the transaction.
var ErrOverlappingExam = errors.New("overlapping exam for one or more sections")

const examSelect = `SELECT e.id, e.name, e.exam_date, e.start_time, e.end_time, e.subject_id, e.exam_type, e.set_type, e.program_id, e.year_id,
	COALESCE((SELECT array_agg(eb.branch_id ORDER BY eb.position) FROM exam_branches eb WHERE eb.exam_id = e.id), '{}') AS branch_ids,
	COALESCE((SELECT array_agg(es.section_id ORDER BY es.position) FROM exam_sections es WHERE es.exam_id = e.id), '{}') AS section_ids,
	e.created_at, e.updated_at
FROM exams e`

// The two disjuncts mirror the historical scheduling rule; their union is the
// contract, so neither clause is simplified away even though they overlap.
const overlapPredicate = `e.exam_date = $1
	AND ((e.start_time <= $3 AND e.end_time >= $2) OR (e.start_time >= $2 AND e.start_time < $3))
	AND es.section_id = ANY($4)
	AND ($5 = '' OR e.id <> $5)`

// ExamRepository provides persistence for exams and their branch/section
// join tables.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams with optional filtering and pagination, newest first.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	where := " WHERE 1=1"
	var args []interface{}

	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		where += fmt.Sprintf(" AND e.subject_id = $%d", len(args))
	}
	if filter.ExamType != "" {
		args = append(args, filter.ExamType)
		where += fmt.Sprintf(" AND e.exam_type = $%d", len(args))
	}
	if filter.ExamDate != "" {
		args = append(args, filter.ExamDate)
		where += fmt.Sprintf(" AND e.exam_date = $%d", len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY e.exam_date DESC, e.start_time ASC LIMIT %d OFFSET %d", examSelect, where, size, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM exams e" + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}

	return exams, total, nil
}

// FindByID loads an exam by id.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	query := examSelect + " WHERE e.id = $1"
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListBySubject returns exams for a subject ordered by date and start time.
func (r *ExamRepository) ListBySubject(ctx context.Context, subjectID string) ([]models.Exam, error) {
	query := examSelect + " WHERE e.subject_id = $1 ORDER BY e.exam_date ASC, e.start_time ASC"
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, subjectID); err != nil {
		return nil, fmt.Errorf("list exams by subject: %w", err)
	}
	return exams, nil
}

// ListByType returns exams of one exam type ordered by date and start time.
func (r *ExamRepository) ListByType(ctx context.Context, examType models.ExamType) ([]models.Exam, error) {
	query := examSelect + " WHERE e.exam_type = $1 ORDER BY e.exam_date ASC, e.start_time ASC"
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, string(examType)); err != nil {
		return nil, fmt.Errorf("list exams by type: %w", err)
	}
	return exams, nil
}

// ListBySection returns exams touching a section ordered by date and start time.
func (r *ExamRepository) ListBySection(ctx context.Context, sectionID string) ([]models.Exam, error) {
	query := examSelect + ` WHERE EXISTS (SELECT 1 FROM exam_sections es WHERE es.exam_id = e.id AND es.section_id = $1) ORDER BY e.exam_date ASC, e.start_time ASC`
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, sectionID); err != nil {
		return nil, fmt.Errorf("list exams by section: %w", err)
	}
	return exams, nil
}

// HasOverlap reports whether any existing exam shares a section with the
// candidate and collides with its time window on the same date.
func (r *ExamRepository) HasOverlap(ctx context.Context, q models.OverlapQuery) (bool, error) {
	return hasOverlap(ctx, r.db, q)
}

func hasOverlap(ctx context.Context, q sqlx.QueryerContext, query models.OverlapQuery) (bool, error) {
	if len(query.SectionIDs) == 0 {
		// No sections, nothing to collide with.
		return false, nil
	}

	stmt := `SELECT EXISTS (SELECT 1 FROM exams e JOIN exam_sections es ON es.exam_id = e.id WHERE ` + overlapPredicate + `)`
	var overlap bool
	if err := sqlx.GetContext(ctx, q, &overlap, stmt,
		query.ExamDate, query.StartTime, query.EndTime, pq.Array(query.SectionIDs), query.ExcludeExamID); err != nil {
		return false, fmt.Errorf("check exam overlap: %w", err)
	}
	return overlap, nil
}

// Create stores a new exam. The overlap check and the insert run inside one
// serializable transaction so two concurrent conflicting writes cannot both
// commit. Returns ErrOverlappingExam on conflict.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	return r.withSerializableTx(ctx, func(tx *sqlx.Tx) error {
		overlap, err := hasOverlap(ctx, tx, models.OverlapQuery{
			ExamDate:   exam.ExamDate,
			StartTime:  exam.StartTime,
			EndTime:    exam.EndTime,
			SectionIDs: exam.SectionIDs,
		})
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlappingExam
		}

		const insert = `INSERT INTO exams (id, name, exam_date, start_time, end_time, subject_id, exam_type, set_type, program_id, year_id, created_at, updated_at) VALUES (:id, :name, :exam_date, :start_time, :end_time, :subject_id, :exam_type, :set_type, :program_id, :year_id, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, exam); err != nil {
			return fmt.Errorf("insert exam: %w", err)
		}

		return insertExamLinks(ctx, tx, exam)
	})
}

// Update full-replaces an exam record, preserving its id. The overlap check
// excludes the exam itself so it may keep its own slot. Returns
// ErrOverlappingExam on conflict; no partial update is applied.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()

	return r.withSerializableTx(ctx, func(tx *sqlx.Tx) error {
		overlap, err := hasOverlap(ctx, tx, models.OverlapQuery{
			ExamDate:      exam.ExamDate,
			StartTime:     exam.StartTime,
			EndTime:       exam.EndTime,
			SectionIDs:    exam.SectionIDs,
			ExcludeExamID: exam.ID,
		})
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlappingExam
		}

		const update = `UPDATE exams SET name = :name, exam_date = :exam_date, start_time = :start_time, end_time = :end_time, subject_id = :subject_id, exam_type = :exam_type, set_type = :set_type, program_id = :program_id, year_id = :year_id, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, update, exam); err != nil {
			return fmt.Errorf("update exam: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_branches WHERE exam_id = $1`, exam.ID); err != nil {
			return fmt.Errorf("clear exam branches: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_sections WHERE exam_id = $1`, exam.ID); err != nil {
			return fmt.Errorf("clear exam sections: %w", err)
		}

		return insertExamLinks(ctx, tx, exam)
	})
}

// Delete removes an exam and its join rows.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete exam: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM exam_branches WHERE exam_id = $1`, id); err != nil {
		return fmt.Errorf("delete exam branches: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exam_sections WHERE exam_id = $1`, id); err != nil {
		return fmt.Errorf("delete exam sections: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete exam: %w", err)
	}
	return nil
}

func (r *ExamRepository) withSerializableTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin exam tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exam tx: %w", err)
	}
	return nil
}

// insertExamLinks writes the join rows, recording supply order so aggregate
// assembly stays deterministic.
func insertExamLinks(ctx context.Context, tx *sqlx.Tx, exam *models.Exam) error {
	for i, branchID := range exam.BranchIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO exam_branches (exam_id, branch_id, position) VALUES ($1, $2, $3)`, exam.ID, branchID, i); err != nil {
			return fmt.Errorf("insert exam branch: %w", err)
		}
	}
	for i, sectionID := range exam.SectionIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO exam_sections (exam_id, section_id, position) VALUES ($1, $2, $3)`, exam.ID, sectionID, i); err != nil {
			return fmt.Errorf("insert exam section: %w", err)
		}
	}
	return nil
}
