package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekolahkita/siakad-backend/internal/cohort"
	"github.com/sekolahkita/siakad-backend/internal/model"
)

var taskSortColumns = map[string]string{
	"name":       "t.name",
	"due_date":   "t.due_date",
	"type":       "t.type",
	"subject":    "s.name",
	"created_at": "t.created_at",
}

// TaskRepository handles task and task assignment data access. Mirrors
// ExamRepository: create/update wrap all writes in one transaction.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// GetByID retrieves a task by its UUID.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t := &model.Task{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, type, due_date, subject_id, academic_year_id, created_at, updated_at
		 FROM tasks WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Type, &t.DueDate, &t.SubjectID, &t.AcademicYearID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetDetail retrieves a task with its reference names and full cohort.
func (r *TaskRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.TaskDetail, error) {
	d := &model.TaskDetail{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.name, t.type, t.due_date, t.subject_id, t.academic_year_id,
		        t.created_at, t.updated_at, s.name, y.name
		 FROM tasks t
		 JOIN subjects s ON s.id = t.subject_id
		 JOIN academic_years y ON y.id = t.academic_year_id
		 WHERE t.id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Type, &d.DueDate, &d.SubjectID, &d.AcademicYearID,
		&d.CreatedAt, &d.UpdatedAt, &d.SubjectName, &d.AcademicYearName)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.student_id, st.nis, st.name, a.class_id, a.class_name, a.score
		 FROM task_assignments a
		 JOIN students st ON st.id = a.student_id
		 WHERE a.task_id = $1
		 ORDER BY a.class_name, st.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.ExamAssignmentDetail
		if err := rows.Scan(&a.ID, &a.StudentID, &a.StudentNIS, &a.StudentName,
			&a.ClassID, &a.ClassName, &a.Score); err != nil {
			return nil, err
		}
		d.Assignments = append(d.Assignments, a)
	}
	return d, rows.Err()
}

// ListPaginated retrieves tasks with reference names, filtered, sorted, and
// paginated according to f.
func (r *TaskRepository) ListPaginated(ctx context.Context, f model.ActivityFilter) ([]model.TaskSummary, int, error) {
	where := ""
	var args []interface{}
	argIdx := 1

	if f.Search != "" {
		where += ` AND t.name ILIKE $` + strconv.Itoa(argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.AcademicYearID > 0 {
		where += ` AND t.academic_year_id = $` + strconv.Itoa(argIdx)
		args = append(args, f.AcademicYearID)
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t WHERE TRUE`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "t.created_at"
	if col, ok := taskSortColumns[f.SortBy]; ok {
		orderBy = col
	}
	direction := "DESC"
	if f.Direction == "asc" {
		direction = "ASC"
	}

	query := `SELECT t.id, t.name, t.type, t.due_date, t.subject_id, t.academic_year_id,
	                 t.created_at, t.updated_at, s.name, y.name, COUNT(a.id)
	          FROM tasks t
	          JOIN subjects s ON s.id = t.subject_id
	          JOIN academic_years y ON y.id = t.academic_year_id
	          LEFT JOIN task_assignments a ON a.task_id = t.id
	          WHERE TRUE` + where + `
	          GROUP BY t.id, s.name, y.name
	          ORDER BY ` + orderBy + ` ` + direction + `
	          LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, f.Limit(), f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []model.TaskSummary
	for rows.Next() {
		var t model.TaskSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.DueDate, &t.SubjectID, &t.AcademicYearID,
			&t.CreatedAt, &t.UpdatedAt, &t.SubjectName, &t.AcademicYearName, &t.StudentCount); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// ExistsIdentity reports whether another task already uses the
// (name, subject_id, academic_year_id) triple.
func (r *TaskRepository) ExistsIdentity(ctx context.Context, name string, subjectID, academicYearID int, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM tasks
		   WHERE name = $1 AND subject_id = $2 AND academic_year_id = $3 AND id <> $4
		 )`, name, subjectID, academicYearID, excludeID,
	).Scan(&exists)
	return exists, err
}

// ListAssignments returns the current assignment set of a task.
func (r *TaskRepository) ListAssignments(ctx context.Context, taskID uuid.UUID) ([]model.TaskAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, student_id, class_id, class_name, score, created_at, updated_at
		 FROM task_assignments WHERE task_id = $1`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.TaskAssignment
	for rows.Next() {
		var a model.TaskAssignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.StudentID, &a.ClassID, &a.ClassName,
			&a.Score, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateWithAssignments inserts a task and its initial cohort in one
// transaction.
func (r *TaskRepository) CreateWithAssignments(ctx context.Context, t *model.Task, set []cohort.Assignment[*float64]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tasks (name, type, due_date, subject_id, academic_year_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Type, t.DueDate, t.SubjectID, t.AcademicYearID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertTaskAssignments(ctx, tx, t.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWithAssignments updates a task's scalar fields and replaces its
// cohort wholesale, all in one transaction.
func (r *TaskRepository) UpdateWithAssignments(ctx context.Context, t *model.Task, set []cohort.Assignment[*float64]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET name = $1, type = $2, due_date = $3, subject_id = $4, updated_at = NOW()
		 WHERE id = $5`,
		t.Name, t.Type, t.DueDate, t.SubjectID, t.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM task_assignments WHERE task_id = $1`, t.ID); err != nil {
		return err
	}

	if err := insertTaskAssignments(ctx, tx, t.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a task and, via cascade, its assignments.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateScore sets the score of a single assignment, scoped to the owning
// task.
func (r *TaskRepository) UpdateScore(ctx context.Context, taskID, assignmentID uuid.UUID, score float64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE task_assignments SET score = $1, updated_at = NOW()
		 WHERE id = $2 AND task_id = $3`,
		score, assignmentID, taskID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// BulkUpdateScores applies a pre-validated batch of score updates inside
// one transaction, each scoped to taskID. Unmatched entries are skipped.
func (r *TaskRepository) BulkUpdateScores(ctx context.Context, taskID uuid.UUID, entries []model.BulkScoreEntry) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	updated := 0
	for _, entry := range entries {
		tag, err := tx.Exec(ctx,
			`UPDATE task_assignments SET score = $1, updated_at = NOW()
			 WHERE id = $2 AND task_id = $3`,
			entry.Score, entry.AssignmentID, taskID)
		if err != nil {
			return 0, err
		}
		updated += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return updated, nil
}

func insertTaskAssignments(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, set []cohort.Assignment[*float64]) error {
	for _, a := range set {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_assignments (task_id, student_id, class_id, class_name, score)
			 VALUES ($1, $2, $3, $4, $5)`,
			taskID, a.StudentID, a.ClassID, a.ClassName, a.Outcome)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return &DuplicateAssignmentError{StudentID: a.StudentID}
			}
			return err
		}
	}
	return nil
}
