package model

import "time"

// AcademicYear represents one school year, e.g. "2024/2025". Exactly one
// year is active at a time; the active year supplies the default for newly
// created cohort activities.
type AcademicYear struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateAcademicYearRequest is the payload for creating an academic year.
type CreateAcademicYearRequest struct {
	Name string `json:"name" binding:"required,min=4,max=20"`
}

// UpdateAcademicYearRequest is the payload for renaming an academic year.
type UpdateAcademicYearRequest struct {
	Name string `json:"name" binding:"required,min=4,max=20"`
}
