package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekolahkita/siakad-backend/internal/model"
)

var ErrDuplicateClassroom = errors.New("nama kelas sudah digunakan pada tahun ajaran ini")

// ClassroomRepository handles classroom data access.
type ClassroomRepository struct {
	pool *pgxpool.Pool
}

// NewClassroomRepository creates a new ClassroomRepository.
func NewClassroomRepository(pool *pgxpool.Pool) *ClassroomRepository {
	return &ClassroomRepository{pool: pool}
}

// GetAll returns classrooms, optionally filtered by academic year.
func (r *ClassroomRepository) GetAll(ctx context.Context, academicYearID int) ([]model.Classroom, error) {
	query := `SELECT id, name, academic_year_id, created_at, updated_at FROM classrooms`
	var args []interface{}
	if academicYearID > 0 {
		query += ` WHERE academic_year_id = $1`
		args = append(args, academicYearID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classrooms []model.Classroom
	for rows.Next() {
		var c model.Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.AcademicYearID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, rows.Err()
}

// GetByID retrieves a classroom by ID.
func (r *ClassroomRepository) GetByID(ctx context.Context, id int) (*model.Classroom, error) {
	c := &model.Classroom{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, academic_year_id, created_at, updated_at
		 FROM classrooms WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.AcademicYearID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// MissingIDs returns the subset of ids that do not exist as classrooms.
// Used by the cohort validator to check submitted class references in one
// round trip.
func (r *ClassroomRepository) MissingIDs(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM classrooms WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int]bool, len(ids))
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []int
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !found[id] && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}

// Create inserts a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, c *model.Classroom) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classrooms (name, academic_year_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.AcademicYearID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateClassroom
		}
		return err
	}
	return nil
}

// Update modifies a classroom.
func (r *ClassroomRepository) Update(ctx context.Context, c *model.Classroom) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classrooms SET name = $1, academic_year_id = $2, updated_at = NOW()
		 WHERE id = $3`,
		c.Name, c.AcademicYearID, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateClassroom
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a classroom. Fails with a foreign key violation if
// students still reference it.
func (r *ClassroomRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classrooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
