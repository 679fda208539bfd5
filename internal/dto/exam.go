package dto

import "github.com/noah-isme/exam-logistics-api/internal/models"

// ExamDetail is the presentation aggregate for an exam: the persisted record
// plus resolved human-readable names for every entity it references. Name
// slices are index-aligned with the corresponding id slices.
type ExamDetail struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ExamDate     string          `json:"exam_date"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	ExamType     models.ExamType `json:"exam_type"`
	SetType      models.SetType  `json:"set_type"`
	SubjectID    string          `json:"subject_id"`
	SubjectCode  string          `json:"subject_code"`
	SubjectName  string          `json:"subject_name"`
	ProgramID    string          `json:"program_id"`
	ProgramName  string          `json:"program_name"`
	YearID       string          `json:"year_id"`
	YearName     string          `json:"year_name"`
	BranchIDs    []string        `json:"branch_ids"`
	BranchNames  []string        `json:"branch_names"`
	SectionIDs   []string        `json:"section_ids"`
	SectionNames []string        `json:"section_names"`
}
