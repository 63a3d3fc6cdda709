package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekolahkita/siakad-backend/internal/apperr"
	"github.com/sekolahkita/siakad-backend/internal/cohort"
	"github.com/sekolahkita/siakad-backend/internal/model"
	"github.com/sekolahkita/siakad-backend/internal/repository"
	"github.com/sekolahkita/siakad-backend/internal/response"
)

type fakeExamStore struct {
	exam          *model.Exam
	assignments   []model.ExamAssignment
	identityTaken bool

	created    *model.Exam
	createdSet []cohort.Assignment[*float64]
	createErr  error
	updated    *model.Exam
	updatedSet []cohort.Assignment[*float64]
	updateErr  error

	scoreAffected int64
	bulkUpdated   int
	bulkEntries   []model.BulkScoreEntry
}

func (f *fakeExamStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	if f.exam == nil {
		return nil, pgx.ErrNoRows
	}
	return f.exam, nil
}

func (f *fakeExamStore) GetDetail(ctx context.Context, id uuid.UUID) (*model.ExamDetail, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeExamStore) ListPaginated(ctx context.Context, flt model.ActivityFilter) ([]model.ExamSummary, int, error) {
	return nil, 0, nil
}

func (f *fakeExamStore) ExistsIdentity(ctx context.Context, name string, subjectID, academicYearID int, excludeID uuid.UUID) (bool, error) {
	return f.identityTaken, nil
}

func (f *fakeExamStore) ListAssignments(ctx context.Context, examID uuid.UUID) ([]model.ExamAssignment, error) {
	return f.assignments, nil
}

func (f *fakeExamStore) CreateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = uuid.New()
	f.created = e
	f.createdSet = set
	return nil
}

func (f *fakeExamStore) UpdateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = e
	f.updatedSet = set
	return nil
}

func (f *fakeExamStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeExamStore) UpdateScore(ctx context.Context, examID, assignmentID uuid.UUID, score float64) (int64, error) {
	return f.scoreAffected, nil
}

func (f *fakeExamStore) BulkUpdateScores(ctx context.Context, examID uuid.UUID, entries []model.BulkScoreEntry) (int, error) {
	f.bulkEntries = entries
	return f.bulkUpdated, nil
}

type fakeLookup struct {
	missing []int
}

func (f *fakeLookup) MissingIDs(ctx context.Context, ids []int) ([]int, error) {
	return f.missing, nil
}

type fakeYears struct {
	year *model.AcademicYear
	err  error
}

func (f *fakeYears) GetActive(ctx context.Context) (*model.AcademicYear, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.year, nil
}

func newTestExamService(store *fakeExamStore, students, classrooms *fakeLookup, years *fakeYears) *ExamService {
	return NewExamService(store, students, classrooms, years, zerolog.Nop())
}

func validRefs() []model.StudentAssignmentRequest {
	return []model.StudentAssignmentRequest{
		{StudentID: 1, ClassID: 10, ClassName: "XII IPA 1"},
		{StudentID: 2, ClassID: 10, ClassName: "XII IPA 1"},
	}
}

func activeYear() *fakeYears {
	return &fakeYears{year: &model.AcademicYear{ID: 3, Name: "2025/2026", IsActive: true}}
}

func TestExamServiceCreateAssignsActiveYearAndBlankScores(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	exam, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, exam.AcademicYearID)
	require.Len(t, store.createdSet, 2)
	for _, a := range store.createdSet {
		assert.Nil(t, a.Outcome)
		assert.Equal(t, "XII IPA 1", a.ClassName)
	}
}

func TestExamServiceCreateRejectsBadDate(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "13-10-2025",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Nil(t, store.created)
}

func TestExamServiceCreateRejectsDuplicateStudents(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	refs := append(validRefs(), model.StudentAssignmentRequest{StudentID: 1, ClassID: 10, ClassName: "XII IPA 1"})
	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: refs,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Constraint, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "1")
	assert.Nil(t, store.created)
}

func TestExamServiceCreateReportsUnknownStudentBeforeDuplicate(t *testing.T) {
	// Student 9 is both unknown and listed twice. Existence is checked
	// first, so the failure is a validation error, not a duplicate one.
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{missing: []int{9}}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:      "UTS Matematika",
		Date:      "2025-10-13",
		SubjectID: 4,
		StudentAssignments: []model.StudentAssignmentRequest{
			{StudentID: 9, ClassID: 10, ClassName: "XII IPA 1"},
			{StudentID: 9, ClassID: 10, ClassName: "XII IPA 1"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "tidak terdaftar")
	assert.Nil(t, store.created)
}

func TestExamServiceCreateReportsTakenIdentityBeforeDuplicate(t *testing.T) {
	store := &fakeExamStore{identityTaken: true}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	refs := append(validRefs(), model.StudentAssignmentRequest{StudentID: 1, ClassID: 10, ClassName: "XII IPA 1"})
	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: refs,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Constraint, apperr.KindOf(err))
	assert.Contains(t, err.Error(), response.GetMessage(response.ErrActivityNameTaken))
	assert.Nil(t, store.created)
}

func TestExamServiceCreateRejectsEmptyCohort(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:      "UTS Matematika",
		Date:      "2025-10-13",
		SubjectID: 4,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestExamServiceCreateRejectsUnknownStudent(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{missing: []int{2}}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "2")
}

func TestExamServiceCreateRejectsUnknownClassroom(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{missing: []int{10}}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestExamServiceCreateRejectsTakenIdentity(t *testing.T) {
	store := &fakeExamStore{identityTaken: true}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Constraint, apperr.KindOf(err))
	assert.Nil(t, store.created)
}

func TestExamServiceCreateRequiresActiveYear(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, &fakeYears{err: pgx.ErrNoRows})

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestExamServiceUpdatePreservesScoresOfRetainedStudents(t *testing.T) {
	examID := uuid.New()
	eighty := 80.0
	store := &fakeExamStore{
		exam: &model.Exam{ID: examID, Name: "UTS Matematika", SubjectID: 4, AcademicYearID: 2},
		assignments: []model.ExamAssignment{
			{ID: uuid.New(), ExamID: examID, StudentID: 1, ClassID: 10, ClassName: "XII IPA 1", Score: &eighty},
			{ID: uuid.New(), ExamID: examID, StudentID: 2, ClassID: 10, ClassName: "XII IPA 1"},
		},
	}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	exam, err := svc.Update(context.Background(), examID, model.UpdateExamRequest{
		Name:      "UTS Matematika",
		Date:      "2025-10-13",
		SubjectID: 4,
		StudentAssignments: []model.StudentAssignmentRequest{
			{StudentID: 1, ClassID: 11, ClassName: "XII IPA 2"},
			{StudentID: 3, ClassID: 11, ClassName: "XII IPA 2"},
		},
	})
	require.NoError(t, err)

	// The academic year is pinned at creation, even though another year is
	// now active.
	assert.Equal(t, 2, exam.AcademicYearID)

	require.Len(t, store.updatedSet, 2)
	require.NotNil(t, store.updatedSet[0].Outcome)
	assert.Equal(t, 80.0, *store.updatedSet[0].Outcome)
	assert.Equal(t, "XII IPA 2", store.updatedSet[0].ClassName)
	assert.Nil(t, store.updatedSet[1].Outcome)
	assert.Equal(t, 3, store.updatedSet[1].StudentID)
}

func TestExamServiceUpdateMissingExam(t *testing.T) {
	store := &fakeExamStore{}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Update(context.Background(), uuid.New(), model.UpdateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.Classify(err).Kind)
}

func TestExamServiceCreateMapsStoreDuplicateToConstraint(t *testing.T) {
	// A unique violation surfaced by the transactional writer, after the
	// validator has already passed, still comes back as a constraint error
	// naming the student.
	store := &fakeExamStore{createErr: &repository.DuplicateAssignmentError{StudentID: 7}}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Create(context.Background(), model.CreateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Constraint, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "7")
	assert.Nil(t, store.created)
}

func TestExamServiceUpdateMapsStoreDuplicateToConstraint(t *testing.T) {
	examID := uuid.New()
	store := &fakeExamStore{
		exam:      &model.Exam{ID: examID, Name: "UTS Matematika", SubjectID: 4, AcademicYearID: 2},
		updateErr: &repository.DuplicateAssignmentError{StudentID: 7},
	}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.Update(context.Background(), examID, model.UpdateExamRequest{
		Name:               "UTS Matematika",
		Date:               "2025-10-13",
		SubjectID:          4,
		StudentAssignments: validRefs(),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Constraint, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "7")
	assert.Nil(t, store.updated)
}

func TestExamServiceUpdateScore(t *testing.T) {
	t.Run("out of range", func(t *testing.T) {
		svc := newTestExamService(&fakeExamStore{}, &fakeLookup{}, &fakeLookup{}, activeYear())
		err := svc.UpdateScore(context.Background(), uuid.New(), uuid.New(), 120)
		require.Error(t, err)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("assignment not owned by exam", func(t *testing.T) {
		svc := newTestExamService(&fakeExamStore{scoreAffected: 0}, &fakeLookup{}, &fakeLookup{}, activeYear())
		err := svc.UpdateScore(context.Background(), uuid.New(), uuid.New(), 90)
		require.Error(t, err)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})

	t.Run("success", func(t *testing.T) {
		svc := newTestExamService(&fakeExamStore{scoreAffected: 1}, &fakeLookup{}, &fakeLookup{}, activeYear())
		require.NoError(t, svc.UpdateScore(context.Background(), uuid.New(), uuid.New(), 90))
	})
}

func TestExamServiceBulkUpdateScoresValidatesBeforeWriting(t *testing.T) {
	ninety := 90.0
	tooHigh := 150.0
	store := &fakeExamStore{bulkUpdated: 1}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	_, err := svc.BulkUpdateScores(context.Background(), uuid.New(), []model.BulkScoreEntry{
		{AssignmentID: uuid.New(), Score: &ninety},
		{AssignmentID: uuid.New(), Score: &tooHigh},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "scores[1].score")

	// Nothing reached the store.
	assert.Nil(t, store.bulkEntries)
}

func TestExamServiceBulkUpdateScoresReturnsUpdatedCount(t *testing.T) {
	ninety := 90.0
	store := &fakeExamStore{bulkUpdated: 1}
	svc := newTestExamService(store, &fakeLookup{}, &fakeLookup{}, activeYear())

	// Two entries submitted, one silently skipped by the store because its
	// assignment no longer belongs to the exam.
	updated, err := svc.BulkUpdateScores(context.Background(), uuid.New(), []model.BulkScoreEntry{
		{AssignmentID: uuid.New(), Score: &ninety},
		{AssignmentID: uuid.New(), Score: &ninety},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Len(t, store.bulkEntries, 2)
}
