package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sekolahkita/siakad-backend/internal/apperr"
	"github.com/sekolahkita/siakad-backend/internal/cohort"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/response"
)

// examStore is the slice of ExamRepository the service needs.
type examStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*model.ExamDetail, error)
	ListPaginated(ctx context.Context, f model.ActivityFilter) ([]model.ExamSummary, int, error)
	ExistsIdentity(ctx context.Context, name string, subjectID, academicYearID int, excludeID uuid.UUID) (bool, error)
	ListAssignments(ctx context.Context, examID uuid.UUID) ([]model.ExamAssignment, error)
	CreateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error
	UpdateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateScore(ctx context.Context, examID, assignmentID uuid.UUID, score float64) (int64, error)
	BulkUpdateScores(ctx context.Context, examID uuid.UUID, entries []model.BulkScoreEntry) (int, error)
}

// refLookup checks submitted foreign keys in one round trip.
type refLookup interface {
	MissingIDs(ctx context.Context, ids []int) ([]int, error)
}

// activeYearSource supplies the default academic year for new activities.
type activeYearSource interface {
	GetActive(ctx context.Context) (*model.AcademicYear, error)
}

// ExamService handles exam business logic: cohort validation,
// reconciliation on update, and score recording. All multi-row writes go
// through the repository's transactional methods.
type ExamService struct {
	examRepo   examStore
	students   refLookup
	classrooms refLookup
	years      activeYearSource
	log        zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo examStore, students, classrooms refLookup, years activeYearSource, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo:   examRepo,
		students:   students,
		classrooms: classrooms,
		years:      years,
		log:        log.With().Str("component", "exam_service").Logger(),
	}
}

// List retrieves exams according to the filter.
func (s *ExamService) List(ctx context.Context, f model.ActivityFilter) ([]model.ExamSummary, *response.Pagination, error) {
	f.Normalize()

	exams, total, err := s.examRepo.ListPaginated(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if exams == nil {
		exams = []model.ExamSummary{}
	}

	totalPages := (total + f.PerPage - 1) / f.PerPage
	pagination := &response.Pagination{
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return exams, pagination, nil
}

// Get retrieves one exam with its full cohort.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.ExamDetail, error) {
	return s.examRepo.GetDetail(ctx, id)
}

// Create validates the activity fields and cohort, then inserts the exam
// together with its initial assignments in one transaction. The academic
// year comes from the active year and is fixed for the exam's lifetime.
func (s *ExamService) Create(ctx context.Context, req model.CreateExamRequest) (*model.Exam, error) {
	date, err := parseActivityDate(req.Date)
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

	taken, err := s.examRepo.ExistsIdentity(ctx, req.Name, req.SubjectID, year.ID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Name:           req.Name,
		Type:           req.Type,
		Date:           date,
		SubjectID:      req.SubjectID,
		AcademicYearID: year.ID,
	}

	set := cohort.Reconcile(nil, toStudentRefs(req.StudentAssignments), (*float64)(nil))
	if err := s.examRepo.CreateWithAssignments(ctx, exam, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("name", exam.Name).
		Int("students", len(set)).
		Msg("Exam created")
	return exam, nil
}

// Update validates the submitted fields and cohort, reconciles the cohort
// against the current assignment set so retained students keep their
// scores, and replaces the set in one transaction. The academic year is
// immutable: the identity check runs against the stored value, never a
// submitted one.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req model.UpdateExamRequest) (*model.Exam, error) {
	existing, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := parseActivityDate(req.Date)
	if err != nil {
		return nil, err
	}

	if err := s.validateCohort(ctx, req.StudentAssignments); err != nil {
		return nil, err
	}

	taken, err := s.examRepo.ExistsIdentity(ctx, req.Name, req.SubjectID, existing.AcademicYearID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	current, err := s.examRepo.ListAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	set := cohort.Reconcile(examAssignmentsToSet(current), toStudentRefs(req.StudentAssignments), (*float64)(nil))

	exam := &model.Exam{
		ID:             id,
		Name:           req.Name,
		Type:           req.Type,
		Date:           date,
		SubjectID:      req.SubjectID,
		AcademicYearID: existing.AcademicYearID,
	}
	if err := s.examRepo.UpdateWithAssignments(ctx, exam, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("exam_id", id.String()).
		Int("students", len(set)).
		Msg("Exam cohort replaced")
	return exam, nil
}

// Delete removes an exam and all of its assignments.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", id.String()).Msg("Exam deleted")
	return nil
}

// UpdateScore records a single score, scoped to the owning exam. An
// assignment belonging to a different exam matches zero rows and is
// reported as not found, so clients cannot score across activities.
func (s *ExamService) UpdateScore(ctx context.Context, examID, assignmentID uuid.UUID, score float64) error {
	if score < 0 || score > 100 {
		return apperr.New(apperr.Validation, response.GetMessage(response.ErrScoreOutOfRange))
	}

	affected, err := s.examRepo.UpdateScore(ctx, examID, assignmentID, score)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, response.GetMessage(response.ErrAssignmentNotFound))
	}
	return nil
}

// BulkUpdateScores records a batch of scores. The whole batch is validated
// before anything is written: one bad entry rejects the entire submission.
// After validation, entries are applied independently; ids that do not
// belong to the exam are skipped. Returns the number of rows updated.
func (s *ExamService) BulkUpdateScores(ctx context.Context, examID uuid.UUID, entries []model.BulkScoreEntry) (int, error) {
	for i, entry := range entries {
		if entry.AssignmentID == uuid.Nil {
			return 0, apperr.WithFields(map[string]string{
				fmt.Sprintf("scores[%d].assignment_id", i): "assignment_id is required",
			})
		}
		if entry.Score == nil || *entry.Score < 0 || *entry.Score > 100 {
			return 0, apperr.WithFields(map[string]string{
				fmt.Sprintf("scores[%d].score", i): response.GetMessage(response.ErrScoreOutOfRange),
			})
		}
	}

	updated, err := s.examRepo.BulkUpdateScores(ctx, examID, entries)
	if err != nil {
		return 0, err
	}

	s.log.Debug().
		Str("exam_id", examID.String()).
		Int("submitted", len(entries)).
		Int("updated", updated).
		Msg("Bulk scores recorded")
	return updated, nil
}

// validateCohort rejects empty submissions and references to students or
// classes that do not exist. Runs before any write. Duplicate detection is a
// separate step that comes after the identity check, so an unknown student
// is always reported before a repeated one.
func (s *ExamService) validateCohort(ctx context.Context, refs []model.StudentAssignmentRequest) error {
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

// ────────────────────────────────────────────────────────────────────────────
// Shared helpers (also used by the task and payment services)
// ────────────────────────────────────────────────────────────────────────────

func parseActivityDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.WithFields(map[string]string{"date": "must be a valid date in YYYY-MM-DD format"})
	}
	return date, nil
}

// rejectDuplicateStudents refuses submissions naming the same student more
// than once.
func rejectDuplicateStudents(refs []model.StudentAssignmentRequest) error {
	if dups := cohort.Duplicates(toStudentRefs(refs)); len(dups) > 0 {
		return apperr.Newf(apperr.Constraint, "%s (ID: %s)",
			response.GetMessage(response.ErrDuplicateStudent), joinIDs(dups))
	}
	return nil
}

func toStudentRefs(reqs []model.StudentAssignmentRequest) []cohort.StudentRef {
	refs := make([]cohort.StudentRef, len(reqs))
	for i, r := range reqs {
		refs[i] = cohort.StudentRef{
			StudentID: r.StudentID,
			ClassID:   r.ClassID,
			ClassName: r.ClassName,
		}
	}
	return refs
}

func examAssignmentsToSet(assignments []model.ExamAssignment) []cohort.Assignment[*float64] {
	set := make([]cohort.Assignment[*float64], len(assignments))
	for i, a := range assignments {
		set[i] = cohort.Assignment[*float64]{
			StudentID: a.StudentID,
			ClassID:   a.ClassID,
			ClassName: a.ClassName,
			Outcome:   a.Score,
		}
	}
	return set
}

// classifyWriteError turns repository-level failures of the transactional
// writers into user-addressable errors where possible.
func classifyWriteError(err error) error {
	var dup *repository.DuplicateAssignmentError
	if errors.As(err, &dup) {
		return apperr.Newf(apperr.Constraint, "siswa dengan ID %d sudah terdaftar pada kegiatan ini", dup.StudentID)
	}
	return err
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
