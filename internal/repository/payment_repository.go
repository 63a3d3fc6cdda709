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

var paymentSortColumns = map[string]string{
	"name":       "p.name",
	"due_date":   "p.due_date",
	"amount":     "p.amount",
	"created_at": "p.created_at",
}

// PaymentRepository handles payment and payment assignment data access.
// Same transactional shape as ExamRepository, with a status outcome
// instead of a score.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// GetByID retrieves a payment by its UUID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p := &model.Payment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, type, due_date, amount, academic_year_id, created_at, updated_at
		 FROM payments WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Type, &p.DueDate, &p.Amount, &p.AcademicYearID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetDetail retrieves a payment with its academic year name and full cohort.
func (r *PaymentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	d := &model.PaymentDetail{}
	err := r.pool.QueryRow(ctx,
		`SELECT p.id, p.name, p.type, p.due_date, p.amount, p.academic_year_id,
		        p.created_at, p.updated_at, y.name
		 FROM payments p
		 JOIN academic_years y ON y.id = p.academic_year_id
		 WHERE p.id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.Type, &d.DueDate, &d.Amount, &d.AcademicYearID,
		&d.CreatedAt, &d.UpdatedAt, &d.AcademicYearName)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.student_id, st.nis, st.name, a.class_id, a.class_name, a.status
		 FROM payment_assignments a
		 JOIN students st ON st.id = a.student_id
		 WHERE a.payment_id = $1
		 ORDER BY a.class_name, st.name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.PaymentAssignmentDetail
		if err := rows.Scan(&a.ID, &a.StudentID, &a.StudentNIS, &a.StudentName,
			&a.ClassID, &a.ClassName, &a.Status); err != nil {
			return nil, err
		}
		d.Assignments = append(d.Assignments, a)
	}
	return d, rows.Err()
}

// ListPaginated retrieves payments filtered, sorted, and paginated
// according to f.
func (r *PaymentRepository) ListPaginated(ctx context.Context, f model.ActivityFilter) ([]model.PaymentSummary, int, error) {
	where := ""
	var args []interface{}
	argIdx := 1

	if f.Search != "" {
		where += ` AND p.name ILIKE $` + strconv.Itoa(argIdx)
		args = append(args, "%"+f.Search+"%")
		argIdx++
	}
	if f.AcademicYearID > 0 {
		where += ` AND p.academic_year_id = $` + strconv.Itoa(argIdx)
		args = append(args, f.AcademicYearID)
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments p WHERE TRUE`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := "p.created_at"
	if col, ok := paymentSortColumns[f.SortBy]; ok {
		orderBy = col
	}
	direction := "DESC"
	if f.Direction == "asc" {
		direction = "ASC"
	}

	query := `SELECT p.id, p.name, p.type, p.due_date, p.amount, p.academic_year_id,
	                 p.created_at, p.updated_at, y.name,
	                 COUNT(a.id), COUNT(a.id) FILTER (WHERE a.status = 'PAID')
	          FROM payments p
	          JOIN academic_years y ON y.id = p.academic_year_id
	          LEFT JOIN payment_assignments a ON a.payment_id = p.id
	          WHERE TRUE` + where + `
	          GROUP BY p.id, y.name
	          ORDER BY ` + orderBy + ` ` + direction + `
	          LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, f.Limit(), f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []model.PaymentSummary
	for rows.Next() {
		var p model.PaymentSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.DueDate, &p.Amount, &p.AcademicYearID,
			&p.CreatedAt, &p.UpdatedAt, &p.AcademicYearName, &p.StudentCount, &p.PaidCount); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

// ExistsIdentity reports whether another payment already uses the
// (name, amount, academic_year_id) triple.
func (r *PaymentRepository) ExistsIdentity(ctx context.Context, name string, amount int64, academicYearID int, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM payments
		   WHERE name = $1 AND amount = $2 AND academic_year_id = $3 AND id <> $4
		 )`, name, amount, academicYearID, excludeID,
	).Scan(&exists)
	return exists, err
}

// ListAssignments returns the current assignment set of a payment.
func (r *PaymentRepository) ListAssignments(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, payment_id, student_id, class_id, class_name, status, created_at, updated_at
		 FROM payment_assignments WHERE payment_id = $1`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.PaymentAssignment
	for rows.Next() {
		var a model.PaymentAssignment
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.StudentID, &a.ClassID, &a.ClassName,
			&a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateWithAssignments inserts a payment and its initial cohort in one
// transaction.
func (r *PaymentRepository) CreateWithAssignments(ctx context.Context, p *model.Payment, set []cohort.Assignment[model.PaymentStatus]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO payments (name, type, due_date, amount, academic_year_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Type, p.DueDate, p.Amount, p.AcademicYearID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertPaymentAssignments(ctx, tx, p.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWithAssignments updates a payment's scalar fields and replaces its
// cohort wholesale, all in one transaction.
func (r *PaymentRepository) UpdateWithAssignments(ctx context.Context, p *model.Payment, set []cohort.Assignment[model.PaymentStatus]) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE payments SET name = $1, type = $2, due_date = $3, amount = $4, updated_at = NOW()
		 WHERE id = $5`,
		p.Name, p.Type, p.DueDate, p.Amount, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM payment_assignments WHERE payment_id = $1`, p.ID); err != nil {
		return err
	}

	if err := insertPaymentAssignments(ctx, tx, p.ID, set); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a payment and, via cascade, its assignments.
func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStatus sets the status of a single assignment, scoped to the owning
// payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID, assignmentID uuid.UUID, status model.PaymentStatus) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_assignments SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND payment_id = $3`,
		status, assignmentID, paymentID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// BulkUpdateStatuses applies a pre-validated batch of status updates inside
// one transaction, each scoped to paymentID. Unmatched entries are skipped.
func (r *PaymentRepository) BulkUpdateStatuses(ctx context.Context, paymentID uuid.UUID, entries []model.BulkPaymentStatusEntry) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	updated := 0
	for _, entry := range entries {
		tag, err := tx.Exec(ctx,
			`UPDATE payment_assignments SET status = $1, updated_at = NOW()
			 WHERE id = $2 AND payment_id = $3`,
			entry.Status, entry.AssignmentID, paymentID)
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

func insertPaymentAssignments(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID, set []cohort.Assignment[model.PaymentStatus]) error {
	for _, a := range set {
		_, err := tx.Exec(ctx,
			`INSERT INTO payment_assignments (payment_id, student_id, class_id, class_name, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			paymentID, a.StudentID, a.ClassID, a.ClassName, a.Outcome)
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
