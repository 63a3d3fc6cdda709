package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is a cohort activity: a scored assessment assigned to a chosen set
// of students. The triple (name, subject_id, academic_year_id) is unique.
// AcademicYearID is fixed at creation and never accepted on update.
type Exam struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           *string   `json:"type,omitempty"`
	Date           time.Time `json:"date"`
	SubjectID      int       `json:"subject_id"`
	AcademicYearID int       `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ExamAssignment links one exam to one student. ClassID and ClassName are a
// snapshot taken from the submitted cohort, not a live join: the stored
// values stay put even if the student later changes class or the classroom
// is renamed. Score is nil until a result is recorded.
type ExamAssignment struct {
	ID        uuid.UUID `json:"id"`
	ExamID    uuid.UUID `json:"exam_id"`
	StudentID int       `json:"student_id"`
	ClassID   int       `json:"class_id"`
	ClassName string    `json:"class_name"`
	Score     *float64  `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExamSummary is one row of the exam list, with reference names joined in.
type ExamSummary struct {
	Exam
	SubjectName      string `json:"subject_name"`
	AcademicYearName string `json:"academic_year_name"`
	StudentCount     int    `json:"student_count"`
}

// ExamAssignmentDetail is an assignment row with the student joined in for
// display. The class fields still come from the stored snapshot.
type ExamAssignmentDetail struct {
	ID          uuid.UUID `json:"id"`
	StudentID   int       `json:"student_id"`
	StudentNIS  string    `json:"student_nis"`
	StudentName string    `json:"student_name"`
	ClassID     int       `json:"class_id"`
	ClassName   string    `json:"class_name"`
	Score       *float64  `json:"score"`
}

// ExamDetail is a single exam with its full cohort.
type ExamDetail struct {
	Exam
	SubjectName      string                 `json:"subject_name"`
	AcademicYearName string                 `json:"academic_year_name"`
	Assignments      []ExamAssignmentDetail `json:"assignments"`
}

// StudentAssignmentRequest is one submitted cohort entry. The class fields
// are recorded on the assignment as-is (snapshot semantics).
type StudentAssignmentRequest struct {
	StudentID int    `json:"student_id" binding:"required"`
	ClassID   int    `json:"class_id" binding:"required"`
	ClassName string `json:"class_name" binding:"required,max=100"`
}

// CreateExamRequest is the payload for creating an exam together with its
// initial cohort. The academic year is taken from the active year.
type CreateExamRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	Date               string                     `json:"date" binding:"required,datetime=2006-01-02"`
	SubjectID          int                        `json:"subject_id" binding:"required"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}

// UpdateExamRequest is the payload for updating an exam. The submitted
// cohort fully replaces the existing one; scores of retained students are
// preserved. academic_year_id is intentionally absent.
type UpdateExamRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	Date               string                     `json:"date" binding:"required,datetime=2006-01-02"`
	SubjectID          int                        `json:"subject_id" binding:"required"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}

// UpdateScoreRequest is the payload for recording a single score.
type UpdateScoreRequest struct {
	Score *float64 `json:"score" binding:"required,gte=0,lte=100"`
}

// BulkScoreEntry is one entry of a bulk score submission.
type BulkScoreEntry struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	Score        *float64  `json:"score" binding:"required,gte=0,lte=100"`
}

// BulkScoreRequest is the payload for recording scores in bulk.
type BulkScoreRequest struct {
	Scores []BulkScoreEntry `json:"scores" binding:"required,min=1,dive"`
}
