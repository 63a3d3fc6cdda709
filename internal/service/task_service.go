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

// TaskService handles task business logic. Structurally a sibling of
// ExamService: same cohort validation, reconciliation, and scoring rules.
type TaskService struct {
	taskRepo   *repository.TaskRepository
	students   refLookup
	classrooms refLookup
	years      activeYearSource
	log        zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo *repository.TaskRepository, students, classrooms refLookup, years activeYearSource, log zerolog.Logger) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		students:   students,
		classrooms: classrooms,
		years:      years,
		log:        log.With().Str("component", "task_service").Logger(),
	}
}

// List retrieves tasks according to the filter.
func (s *TaskService) List(ctx context.Context, f model.ActivityFilter) ([]model.TaskSummary, *response.Pagination, error) {
	f.Normalize()

	tasks, total, err := s.taskRepo.ListPaginated(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if tasks == nil {
		tasks = []model.TaskSummary{}
	}

	totalPages := (total + f.PerPage - 1) / f.PerPage
	pagination := &response.Pagination{
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return tasks, pagination, nil
}

// Get retrieves one task with its full cohort.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.TaskDetail, error) {
	return s.taskRepo.GetDetail(ctx, id)
}

// Create validates and inserts a task with its initial cohort in one
// transaction.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (*model.Task, error) {
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

	taken, err := s.taskRepo.ExistsIdentity(ctx, req.Name, req.SubjectID, year.ID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	task := &model.Task{
		Name:           req.Name,
		Type:           req.Type,
		DueDate:        dueDate,
		SubjectID:      req.SubjectID,
		AcademicYearID: year.ID,
	}

	set := cohort.Reconcile(nil, toStudentRefs(req.StudentAssignments), (*float64)(nil))
	if err := s.taskRepo.CreateWithAssignments(ctx, task, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("task_id", task.ID.String()).
		Str("name", task.Name).
		Int("students", len(set)).
		Msg("Task created")
	return task, nil
}

// Update reconciles the submitted cohort against the current assignment
// set and replaces it in one transaction, preserving scores of retained
// students.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, req model.UpdateTaskRequest) (*model.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, id)
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

	taken, err := s.taskRepo.ExistsIdentity(ctx, req.Name, req.SubjectID, existing.AcademicYearID, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Constraint, response.GetMessage(response.ErrActivityNameTaken))
	}

	if err := rejectDuplicateStudents(req.StudentAssignments); err != nil {
		return nil, err
	}

	current, err := s.taskRepo.ListAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	set := cohort.Reconcile(taskAssignmentsToSet(current), toStudentRefs(req.StudentAssignments), (*float64)(nil))

	task := &model.Task{
		ID:             id,
		Name:           req.Name,
		Type:           req.Type,
		DueDate:        dueDate,
		SubjectID:      req.SubjectID,
		AcademicYearID: existing.AcademicYearID,
	}
	if err := s.taskRepo.UpdateWithAssignments(ctx, task, set); err != nil {
		return nil, classifyWriteError(err)
	}

	s.log.Info().
		Str("task_id", id.String()).
		Int("students", len(set)).
		Msg("Task cohort replaced")
	return task, nil
}

// Delete removes a task and all of its assignments.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("task_id", id.String()).Msg("Task deleted")
	return nil
}

// UpdateScore records a single score, scoped to the owning task.
func (s *TaskService) UpdateScore(ctx context.Context, taskID, assignmentID uuid.UUID, score float64) error {
	if score < 0 || score > 100 {
		return apperr.New(apperr.Validation, response.GetMessage(response.ErrScoreOutOfRange))
	}

	affected, err := s.taskRepo.UpdateScore(ctx, taskID, assignmentID, score)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, response.GetMessage(response.ErrAssignmentNotFound))
	}
	return nil
}

// BulkUpdateScores records a batch of scores with the same all-or-nothing
// validation and silent-skip semantics as the exam variant.
func (s *TaskService) BulkUpdateScores(ctx context.Context, taskID uuid.UUID, entries []model.BulkScoreEntry) (int, error) {
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

	updated, err := s.taskRepo.BulkUpdateScores(ctx, taskID, entries)
	if err != nil {
		return 0, err
	}

	s.log.Debug().
		Str("task_id", taskID.String()).
		Int("submitted", len(entries)).
		Int("updated", updated).
		Msg("Bulk scores recorded")
	return updated, nil
}

func (s *TaskService) validateCohort(ctx context.Context, refs []model.StudentAssignmentRequest) error {
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

func taskAssignmentsToSet(assignments []model.TaskAssignment) []cohort.Assignment[*float64] {
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
