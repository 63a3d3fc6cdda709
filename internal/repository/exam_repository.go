package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekolahkita/siakad-backend/internal/cohort"
	"github.com/sekolahkita/siakad-backend/internal/model"
)

// DuplicateAssignmentError is returned when the (activity, student)
// composite key is violated during an assignment insert. It names the
// offending student so the message can be shown to the user.
type DuplicateAssignmentError struct {
	StudentID int
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("siswa dengan ID %d sudah terdaftar pada kegiatan ini", e.StudentID)
}

// examSortColumns whitelists the sortable columns of the exam list.
var examSortColumns = map[string]string{
	"name":       "e.name",
	"date":       "e.date",
	"type":       "e.type",
	"subject":    "s.name",
	"created_at": "e.created_at",
}

// ExamRepository handles exam and exam assignment data access. Create and
// update wrap all their writes in a single transaction: a failure at any
// row leaves the previous state fully intact.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, type, date, subject_id, academic_year_id, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Type, &e.Date, &e.SubjectID, &e.AcademicYearID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetDetail retrieves an exam with its reference names and full cohort.
// The cohort is loaded in one joined query, ordered by class then student
// name for display.
func (r *ExamRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ExamDetail, error) {
	d := &model.ExamDetail{}
	err := r.pool.QueryRow(ctx,
		`SELECT e.id, e.name, e.type, e.date, e.subject_id, e.academic_year_id,
		        e.created_at, e.updated_at, s.name, y.name
		 FROM exams e
		 JOIN subjects s ON s.id = e.subject_id
		 JOIN academic_years y ON y.id = e.academic_year_id
		 WHERE e.id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Type, &d.Date, &d.SubjectID, &d.AcademicYearID,
		&d.CreatedAt, &d.UpdatedAt, &d.SubjectName, &d.AcademicYearName)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.student_id, st.nis, st.name, a.class_id, a.class_name, a.score
		 FROM exam_assignments a
		 JOIN students st ON st.id = a.student_id
		 WHERE a.exam_id = $1
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

// ListPaginated retrieves exams with reference names, filtered, sorted, and
// paginated according to f.
func (r *ExamRepository) ListPaginated(ctx context.Context, f model.ActivityFilter) ([]model.ExamSummary, int, error) {
	where := ""
	var args []interface{}
	argIdx := 1

	if f.Search != "" {
		where += ` AND e.name ILIKE $` + strconv.Itoa(argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.AcademicYearID > 0 {
		where += ` AND e.academic_year_id = $` + strconv.Itoa(argIdx)
		args = append(args, f.AcademicYearID)
		argIdx++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM exams e WHERE TRUE` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "e.created_at"
	if col, ok := examSortColumns[f.SortBy]; ok {
		orderBy = col
	}
	direction := "DESC"
	if f.Direction == "asc" {
		direction = "ASC"
	}

	query := `SELECT e.id, e.name, e.type, e.date, e.subject_id, e.academic_year_id,
	                 e.created_at, e.updated_at, s.name, y.name, COUNT(a.id)
	          FROM exams e
	          JOIN subjects s ON s.id = e.subject_id
	          JOIN academic_years y ON y.id = e.academic_year_id
	          LEFT JOIN exam_assignments a ON a.exam_id = e.id
	          WHERE TRUE` + where + `
	          GROUP BY e.id, s.name, y.name
	          ORDER BY ` + orderBy + ` ` + direction + `
	          LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, f.Limit(), f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.ExamSummary
	for rows.Next() {
		var e model.ExamSummary
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Date, &e.SubjectID, &e.AcademicYearID,
			&e.CreatedAt, &e.UpdatedAt, &e.SubjectName, &e.AcademicYearName, &e.StudentCount); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// ExistsIdentity reports whether another exam already uses the
// (name, subject_id, academic_year_id) triple. Pass uuid.Nil as excludeID
// on create; on update pass the exam's own id so it does not collide with
// itself.
func (r *ExamRepository) ExistsIdentity(ctx context.Context, name string, subjectID, academicYearID int, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM exams
		   WHERE name = $1 AND subject_id = $2 AND academic_year_id = $3 AND id <> $4
		 )`, name, subjectID, academicYearID, excludeID,
	).Scan(&exists)
	return exists, err
}

// ListAssignments returns the current assignment set of an exam, keyed data
// only — enough for reconciliation.
func (r *ExamRepository) ListAssignments(ctx context.Context, examID uuid.UUID) ([]model.ExamAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, class_id, class_name, score, created_at, updated_at
		 FROM exam_assignments WHERE exam_id = $1`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.ExamAssignment
	for rows.Next() {
		var a model.ExamAssignment
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.ClassID, &a.ClassName,
			&a.Score, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateWithAssignments inserts an exam and its initial cohort in one
// transaction. If any assignment insert fails, the exam row is rolled back
// with it.
func (r *ExamRepository) CreateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (name, type, date, subject_id, academic_year_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		e.Name, e.Type, e.Date, e.SubjectID, e.AcademicYearID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertExamAssignments(ctx, tx, e.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWithAssignments updates an exam's scalar fields and replaces its
// cohort wholesale, all in one transaction. The caller supplies the
// reconciled set; existing rows are deleted and reinserted, never patched.
func (r *ExamRepository) UpdateWithAssignments(ctx context.Context, e *model.Exam, set []cohort.Assignment[*float64]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exams SET name = $1, type = $2, date = $3, subject_id = $4, updated_at = NOW()
		 WHERE id = $5`,
		e.Name, e.Type, e.Date, e.SubjectID, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM exam_assignments WHERE exam_id = $1`, e.ID); err != nil {
		return err
	}

	if err := insertExamAssignments(ctx, tx, e.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes an exam. Its assignments go with it via ON DELETE CASCADE.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateScore sets the score of a single assignment, scoped to the owning
// exam. An assignment id belonging to a different exam matches zero rows;
// the caller treats that as not found.
func (r *ExamRepository) UpdateScore(ctx context.Context, examID, assignmentID uuid.UUID, score float64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_assignments SET score = $1, updated_at = NOW()
		 WHERE id = $2 AND exam_id = $3`,
		score, assignmentID, examID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// BulkUpdateScores applies a pre-validated batch of score updates inside
// one transaction, each scoped to examID. Entries whose assignment does not
// belong to the exam match zero rows and are skipped. Returns the number of
// rows actually updated.
func (r *ExamRepository) BulkUpdateScores(ctx context.Context, examID uuid.UUID, entries []model.BulkScoreEntry) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	updated := 0
	for _, entry := range entries {
		tag, err := tx.Exec(ctx,
			`UPDATE exam_assignments SET score = $1, updated_at = NOW()
			 WHERE id = $2 AND exam_id = $3`,
			entry.Score, entry.AssignmentID, examID)
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

// insertExamAssignments inserts the assignment set row by row so that a
// composite-key violation can name the offending student.
func insertExamAssignments(ctx context.Context, tx pgx.Tx, examID uuid.UUID, set []cohort.Assignment[*float64]) error {
	for _, a := range set {
		_, err := tx.Exec(ctx,
			`INSERT INTO exam_assignments (exam_id, student_id, class_id, class_name, score)
			 VALUES ($1, $2, $3, $4, $5)`,
			examID, a.StudentID, a.ClassID, a.ClassName, a.Outcome)
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
