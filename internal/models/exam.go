package models

import (
	"time"

	"github.com/lib/pq"
)

// ExamType is the kind of assessment being scheduled.
type ExamType string

const (
	ExamTypeMidterm  ExamType = "MIDTERM"
	ExamTypeSemester ExamType = "SEMESTER"
)

// SetType identifies the question-paper set used for the exam.
type SetType string

const (
	SetTypeNone SetType = "NO_SET"
	SetTypeSet1 SetType = "SET1"
	SetTypeSet2 SetType = "SET2"
)

// ValidExamType reports whether the value is a known exam type.
func ValidExamType(t ExamType) bool {
	return t == ExamTypeMidterm || t == ExamTypeSemester
}

// ValidSetType reports whether the value is a known set type.
func ValidSetType(t SetType) bool {
	return t == SetTypeNone || t == SetTypeSet1 || t == SetTypeSet2
}

// Exam is a scheduled assessment binding a subject, a time window and a set
// of sections. Dates are stored as "2006-01-02" and times as zero-padded
// "15:04" strings, so lexical comparison matches chronological order. The
// branch and section id slices preserve the order ids were supplied in.
type Exam struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	ExamDate   string         `db:"exam_date" json:"exam_date"`
	StartTime  string         `db:"start_time" json:"start_time"`
	EndTime    string         `db:"end_time" json:"end_time"`
	SubjectID  string         `db:"subject_id" json:"subject_id"`
	ExamType   ExamType       `db:"exam_type" json:"exam_type"`
	SetType    SetType        `db:"set_type" json:"set_type"`
	ProgramID  string         `db:"program_id" json:"program_id"`
	YearID     string         `db:"year_id" json:"year_id"`
	BranchIDs  pq.StringArray `db:"branch_ids" json:"branch_ids"`
	SectionIDs pq.StringArray `db:"section_ids" json:"section_ids"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// ExamFilter describes query params for listing exams.
type ExamFilter struct {
	SubjectID string
	ExamType  string
	ExamDate  string
	Page      int
	PageSize  int
}

// OverlapQuery is the input to the scheduling conflict check. ExcludeExamID
// is empty when creating a new exam, so nothing is excluded.
type OverlapQuery struct {
	ExamDate      string
	StartTime     string
	EndTime       string
	SectionIDs    []string
	ExcludeExamID string
}
