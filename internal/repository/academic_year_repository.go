package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sekolahkita/siakad-backend/internal/model"
)

// AcademicYearRepository handles academic year data access.
type AcademicYearRepository struct {
	pool *pgxpool.Pool
}

// NewAcademicYearRepository creates a new AcademicYearRepository.
func NewAcademicYearRepository(pool *pgxpool.Pool) *AcademicYearRepository {
	return &AcademicYearRepository{pool: pool}
}

// GetAll returns all academic years, newest first.
func (r *AcademicYearRepository) GetAll(ctx context.Context) ([]model.AcademicYear, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, is_active, created_at, updated_at
		 FROM academic_years ORDER BY name DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []model.AcademicYear
	for rows.Next() {
		var y model.AcademicYear
		if err := rows.Scan(&y.ID, &y.Name, &y.IsActive, &y.CreatedAt, &y.UpdatedAt); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// GetByID retrieves an academic year by ID.
func (r *AcademicYearRepository) GetByID(ctx context.Context, id int) (*model.AcademicYear, error) {
	y := &model.AcademicYear{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_active, created_at, updated_at
		 FROM academic_years WHERE id = $1`, id,
	).Scan(&y.ID, &y.Name, &y.IsActive, &y.CreatedAt, &y.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return y, nil
}

// GetActive retrieves the single active academic year.
func (r *AcademicYearRepository) GetActive(ctx context.Context) (*model.AcademicYear, error) {
	y := &model.AcademicYear{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_active, created_at, updated_at
		 FROM academic_years WHERE is_active`,
	).Scan(&y.ID, &y.Name, &y.IsActive, &y.CreatedAt, &y.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return y, nil
}

// Create inserts a new academic year (inactive by default).
func (r *AcademicYearRepository) Create(ctx context.Context, y *model.AcademicYear) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO academic_years (name) VALUES ($1)
		 RETURNING id, is_active, created_at, updated_at`,
		y.Name,
	).Scan(&y.ID, &y.IsActive, &y.CreatedAt, &y.UpdatedAt)
}

// Update renames an academic year.
func (r *AcademicYearRepository) Update(ctx context.Context, y *model.AcademicYear) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE academic_years SET name = $1, updated_at = NOW() WHERE id = $2`,
		y.Name, y.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Activate makes the given year the active one. Deactivating the previous
// year and activating the new one happen in the same transaction so the
// partial unique index never fires.
func (r *AcademicYearRepository) Activate(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE academic_years SET is_active = FALSE, updated_at = NOW() WHERE is_active`); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE academic_years SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

// Delete removes an academic year. Fails with a foreign key violation if
// classrooms or activities still reference it.
func (r *AcademicYearRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM academic_years WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
