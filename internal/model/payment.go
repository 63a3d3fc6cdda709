package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus enumerates the per-student payment outcome.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusExempt PaymentStatus = "EXEMPT"
)

// Payment is the billing sibling of Exam: a fee assigned to a cohort of
// students, each carrying a payment status instead of a score. Payments are
// not tied to a subject; the identity triple is (name, amount,
// academic_year_id).
type Payment struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           *string   `json:"type,omitempty"`
	DueDate        time.Time `json:"due_date"`
	Amount         int64     `json:"amount"`
	AcademicYearID int       `json:"academic_year_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PaymentAssignment links one payment to one student, with the same class
// snapshot semantics as ExamAssignment. New members start as UNPAID.
type PaymentAssignment struct {
	ID        uuid.UUID     `json:"id"`
	PaymentID uuid.UUID     `json:"payment_id"`
	StudentID int           `json:"student_id"`
	ClassID   int           `json:"class_id"`
	ClassName string        `json:"class_name"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PaymentSummary is one row of the payment list.
type PaymentSummary struct {
	Payment
	AcademicYearName string `json:"academic_year_name"`
	StudentCount     int    `json:"student_count"`
	PaidCount        int    `json:"paid_count"`
}

// PaymentAssignmentDetail is a payment assignment with the student joined in.
type PaymentAssignmentDetail struct {
	ID          uuid.UUID     `json:"id"`
	StudentID   int           `json:"student_id"`
	StudentNIS  string        `json:"student_nis"`
	StudentName string        `json:"student_name"`
	ClassID     int           `json:"class_id"`
	ClassName   string        `json:"class_name"`
	Status      PaymentStatus `json:"status"`
}

// PaymentDetail is a single payment with its full cohort.
type PaymentDetail struct {
	Payment
	AcademicYearName string                    `json:"academic_year_name"`
	Assignments      []PaymentAssignmentDetail `json:"assignments"`
}

// CreatePaymentRequest is the payload for creating a payment with its cohort.
type CreatePaymentRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	DueDate            string                     `json:"due_date" binding:"required,datetime=2006-01-02"`
	Amount             int64                      `json:"amount" binding:"required,gt=0"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}

// UpdatePaymentRequest is the payload for updating a payment. Full-replace
// cohort semantics, academic_year_id not accepted.
type UpdatePaymentRequest struct {
	Name               string                     `json:"name" binding:"required,min=2,max=70"`
	Type               *string                    `json:"type" binding:"omitempty,max=70"`
	DueDate            string                     `json:"due_date" binding:"required,datetime=2006-01-02"`
	Amount             int64                      `json:"amount" binding:"required,gt=0"`
	StudentAssignments []StudentAssignmentRequest `json:"student_assignments" binding:"required,min=1,dive"`
}

// UpdatePaymentStatusRequest is the payload for recording a single status.
type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" binding:"required,oneof=UNPAID PAID EXEMPT"`
}

// BulkPaymentStatusEntry is one entry of a bulk status submission.
type BulkPaymentStatusEntry struct {
	AssignmentID uuid.UUID     `json:"assignment_id" binding:"required"`
	Status       PaymentStatus `json:"status" binding:"required,oneof=UNPAID PAID EXEMPT"`
}

// BulkPaymentStatusRequest is the payload for recording statuses in bulk.
type BulkPaymentStatusRequest struct {
	Statuses []BulkPaymentStatusEntry `json:"statuses" binding:"required,min=1,dive"`
}
