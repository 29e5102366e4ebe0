package models

import "time"

// Case represents an investigative case stored in the 'cases' table.
// The correlation engine only reads title/description and records network
// membership; everything else is owned by case intake.
type Case struct {
	ID              int64      `db:"id" json:"id"`
	CaseUID         string     `db:"case_uid" json:"case_uid"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	ViolationType   string     `db:"violation_type" json:"violation_type"`
	Status          string     `db:"status" json:"status"`
	ReporterName    *string    `db:"reporter_name" json:"reporter_name,omitempty"`
	ReporterContact *string    `db:"reporter_contact" json:"reporter_contact,omitempty"`
	CreatedBy       *int64     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CreateCaseInput represents input for creating a case.
type CreateCaseInput struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description"`
	ViolationType   string  `json:"violation_type" binding:"required"`
	ReporterName    *string `json:"reporter_name"`
	ReporterContact *string `json:"reporter_contact"`
}
