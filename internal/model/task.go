package model

import (
	"time"

	"github.com/google/uuid"
)

// Task is the homework sibling of Exam: same cohort and scoring mechanics,
// with a due date instead of an exam date.
type Task struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           *string   `json:"type,omitempty"`
	DueDate        time.Time `json:"due_date"`
	SubjectID      int       `json:"subject_id"`
	AcademicYearID int       `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TaskAssignment links one task to one student, with the same class
// snapshot semantics as ExamAssignment.
type TaskAssignment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	ClassName string    `json:"class_name"`
	Score     *float64  `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskSummary is one row of the task list.
type TaskSummary struct {
	Task
	SubjectName      string `json:"subject_name"`
	AcademicYearName string `json:"academic_year_name"`
	StudentCount     int    `json:"student_count"`
}

// TaskDetail is a single task with its full cohort.
type TaskDetail struct {
	Task
	SubjectName      string                 `json:"subject_name"`
	AcademicYearName string                 `json:"academic_year_name"`
	Assignments      []ExamAssignmentDetail `json:"assignments"`
}

// CreateTaskRequest is the payload for creating a task with its cohort.
type CreateTaskRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	DueDate            string                     `json:"due_date" binding:"required,datetime=2006-01-02"`
	SubjectID          int                        `json:"subject_id" binding:"required"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}

// UpdateTaskRequest is the payload for updating a task. Full-replace cohort
// semantics, academic_year_id not accepted.
type UpdateTaskRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	DueDate            string                     `json:"due_date" binding:"required,datetime=2006-01-02"`
	SubjectID          int                        `json:"subject_id" binding:"required"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}
