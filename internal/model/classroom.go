package model

import "time"

// Classroom represents one class group within an academic year, e.g. "XII TKJ 2".
type Classroom struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	AcademicYearID int       `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateClassroomRequest is the payload for creating a classroom.
type CreateClassroomRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=100"`
	AcademicYearID int    `json:"academic_year_id" binding:"required"`
}

// UpdateClassroomRequest is the payload for updating a classroom.
type UpdateClassroomRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=100"`
	AcademicYearID int    `json:"academic_year_id" binding:"required"`
}
