package models

import "time"

// Program is a degree program (B.Tech, BBA, ...). Names are unique.
type Program struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	DurationYears int       `db:"duration_years" json:"duration_years"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Year is an academic year within a program; (name, program_id) is unique.
type Year struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	YearNumber int       `db:"year_number" json:"year_number"`
	ProgramID  string    `db:"program_id" json:"program_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Branch is a specialisation within a year; (name, year_id) is unique.
type Branch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	YearID    string    `db:"year_id" json:"year_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Section is a student group within a branch; (name, branch_id) is unique.
// FormattedName is derived as "{branch name} - {section name}" and rewritten
// whenever the section name or the parent branch name changes.
type Section struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	FormattedName string    `db:"formatted_name" json:"formatted_name"`
	Capacity      int       `db:"capacity" json:"capacity"`
	BranchID      string    `db:"branch_id" json:"branch_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FormatSectionName builds the display label stored on a section.
func FormatSectionName(branchName, sectionName string) string {
	return branchName + " - " + sectionName
}
