package models

import "time"

// Subject is an examinable course. Codes are unique.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Student belongs to at most one section.
type Student struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Email              string         `db:"email" json:"email"`
	RegistrationNumber string         `db:"registration_number" json:"registration_number"`
	PhoneNumber        string         `db:"phone_number" json:"phone_number"`
	SectionID          *string        `db:"section_id" json:"section_id"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// Invigilator is exam supervision staff. Email and employee id are unique.
type Invigilator struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	EmployeeID  string    `db:"employee_id" json:"employee_id"`
	Department  string    `db:"department" json:"department"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Designation string    `db:"designation" json:"designation"`
	Available   bool      `db:"available" json:"available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
