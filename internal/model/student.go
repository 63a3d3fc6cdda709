package model

import "time"

// Gender represents the student's gender.
type Gender string

const (
	GenderMale   Gender = "Laki-laki"
	GenderFemale Gender = "Perempuan"
)

// Student represents an enrolled student.
type Student struct {
	ID        int       `json:"id"`
	NIS       string    `json:"nis"`
	Name      string    `json:"name"`
	Gender    Gender    `json:"gender"`
	ClassID   int       `json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStudentRequest is the payload for registering a new student.
type CreateStudentRequest struct {
	NIS     string `json:"nis" binding:"required,min=4,max=20"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Gender  Gender `json:"gender" binding:"required,oneof=Laki-laki Perempuan"`
	ClassID int    `json:"class_id" binding:"required"`
}

// UpdateStudentRequest is the payload for updating an existing student.
type UpdateStudentRequest struct {
	NIS     string `json:"nis" binding:"required,min=4,max=20"`
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Gender  Gender `json:"gender" binding:"required,oneof=Laki-laki Perempuan"`
	ClassID int    `json:"class_id" binding:"required"`
}
