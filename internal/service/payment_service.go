package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/apperr"
	"github.com/sekolahkita/siakad-backend/internal/cohort"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/response"
)

// PaymentService handles payment business logic. Same cohort mechanics as
// exams and tasks, but the per-student outcome is a payment status and the
// identity triple is (name, amount, academic_year_id).
type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	students    refLookup
	classrooms  refLookup
	years       activeYearSource
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(paymentRepo *repository.PaymentRepository, students, classrooms refLookup, years activeYearSource, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		students:    students,
		classrooms:  classrooms,
		years:       years,
		log:         log.With().Str("component", "payment_service").Logger(),
	}
}

// List retrieves payments according to the filter.
func (s *PaymentService) List(ctx context.Context, f model.ActivityFilter) ([]model.PaymentSummary, *response.Pagination, error) {
	f.Normalize()

	payments, total, err := s.paymentRepo.ListPaginated(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if payments == nil {
		payments = []model.PaymentSummary{}
	}

	totalPages := (total + f.PerPage - 1) / f.PerPage
	pagination := &response.Pagination{
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return payments, pagination, nil
}

// Get retrieves one payment with its full cohort.
func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	return s.paymentRepo.GetDetail(ctx, id)
}

// Create validates and inserts a payment with its initial cohort in one
// transaction. New members start as UNPAID.
func (s *PaymentService) Create(ctx context.Context, req model.CreatePaymentRequest) (*model.Payment, error) {
	dueDate, err := parseActivityDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	year, err := s.years.GetActive(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, fmt.Errorf("%s: %w", response.GetMessage(response.ErrNoActiveAcademicYear), err))
	}

	if err := s.validateCohort(ctx, req.StudentAssignments); err != nil {
		return nil, err
	}

	taken, err := s.paymentRepo.ExistsIdentity(ctx, req.Name, req.Amount, year.ID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		Name:           req.Name,
		Type:           req.Type,
		DueDate:        dueDate,
		Amount:         req.Amount,
		AcademicYearID: year.ID,
	}

	set := cohort.Reconcile(nil, toStudentRefs(req.StudentAssignments), model.PaymentStatusUnpaid)
	if err := s.paymentRepo.CreateWithAssignments(ctx, payment, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("name", payment.Name).
		Int64("amount", payment.Amount).
		Int("students", len(set)).
		Msg("Payment created")
	return payment, nil
}

// Update reconciles the submitted cohort against the current assignment
// set and replaces it in one transaction, preserving statuses of retained
// students.
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req model.UpdatePaymentRequest) (*model.Payment, error) {
	existing, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseActivityDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.validateCohort(ctx, req.StudentAssignments); err != nil {
		return nil, err
	}

	taken, err := s.paymentRepo.ExistsIdentity(ctx, req.Name, req.Amount, existing.AcademicYearID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	current, err := s.paymentRepo.ListAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	set := cohort.Reconcile(paymentAssignmentsToSet(current), toStudentRefs(req.StudentAssignments), model.PaymentStatusUnpaid)

	payment := &model.Payment{
		ID:             id,
		Name:           req.Name,
		Type:           req.Type,
		DueDate:        dueDate,
		Amount:         req.Amount,
		AcademicYearID: existing.AcademicYearID,
	}
	if err := s.paymentRepo.UpdateWithAssignments(ctx, payment, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("payment_id", id.String()).
		Int("students", len(set)).
		Msg("Payment cohort replaced")
	return payment, nil
}

// Delete removes a payment and all of its assignments.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("payment_id", id.String()).Msg("Payment deleted")
	return nil
}

// UpdateStatus records a single payment status, scoped to the owning
// payment.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID, assignmentID uuid.UUID, status model.PaymentStatus) error {
	affected, err := s.paymentRepo.UpdateStatus(ctx, paymentID, assignmentID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, response.GetMessage(response.ErrAssignmentNotFound))
	}
	return nil
}

// BulkUpdateStatuses records a batch of statuses. Validation is
// all-or-nothing; entries whose assignment no longer belongs to the payment
// are skipped and only the updated count is reported.
func (s *PaymentService) BulkUpdateStatuses(ctx context.Context, paymentID uuid.UUID, entries []model.BulkPaymentStatusEntry) (int, error) {
	for i, entry := range entries {
		if entry.AssignmentID == uuid.Nil {
			return 0, apperr.WithFields(map[string]string{
				fmt.Sprintf("statuses[%d].assignment_id", i): "assignment_id is required",
			})
		}
		switch entry.Status {
		case model.PaymentStatusUnpaid, model.PaymentStatusPaid, model.PaymentStatusExempt:
		default:
			return 0, apperr.WithFields(map[string]string{
				fmt.Sprintf("statuses[%d].status", i): "status must be one of UNPAID, PAID, EXEMPT",
			})
		}
	}

	updated, err := s.paymentRepo.BulkUpdateStatuses(ctx, paymentID, entries)
	if err != nil {
		return 0, err
	}

	s.log.Debug().
		Str("payment_id", paymentID.String()).
		Int("submitted", len(entries)).
		Int("updated", updated).
		Msg("Bulk statuses recorded")
	return updated, nil
}

func (s *PaymentService) validateCohort(ctx context.Context, refs []model.StudentAssignmentRequest) error {
	if len(refs) == 0 {
		return apperr.New(apperr.Validation, response.GetMessage(response.ErrEmptyCohort))
	}

	studentIDs := make([]int, 0, len(refs))
	classIDs := make([]int, 0, len(refs))
	for _, ref := range refs {
		studentIDs = append(studentIDs, ref.StudentID)
		classIDs = append(classIDs, ref.ClassID)
	}

	missing, err := s.students.MissingIDs(ctx, studentIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Newf(apperr.Validation, "%s (ID: %s)",
			response.GetMessage(response.ErrUnknownStudent), joinIDs(missing))
	}

	missing, err = s.classrooms.MissingIDs(ctx, classIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.Newf(apperr.Validation, "%s (ID: %s)",
			response.GetMessage(response.ErrUnknownClassroom), joinIDs(missing))
	}
	return nil
}

func paymentAssignmentsToSet(assignments []model.PaymentAssignment) []cohort.Assignment[model.PaymentStatus] {
	set := make([]cohort.Assignment[model.PaymentStatus], len(assignments))
	for i, a := range assignments {
		set[i] = cohort.Assignment[model.PaymentStatus]{
			StudentID: a.StudentID,
			ClassID:   a.ClassID,
			ClassName: a.ClassName,
			Outcome:   a.Status,
		}
	}
	return set
}
