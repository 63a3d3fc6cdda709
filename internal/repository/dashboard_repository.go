package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardCounts aggregates the headline numbers for the admin dashboard,
// scoped to one academic year.
type DashboardCounts struct {
	Students   int `json:"students"`
	Classrooms int `json:"classrooms"`
	Subjects   int `json:"subjects"`
	Exams      int `json:"exams"`
	Tasks      int `json:"tasks"`
	Payments   int `json:"payments"`
}

// DashboardRepository computes dashboard aggregates.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetCounts returns the dashboard counters for one academic year in a
// single query.
func (r *DashboardRepository) GetCounts(ctx context.Context, academicYearID int) (*DashboardCounts, error) {
	c := &DashboardCounts{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM students st JOIN classrooms c ON c.id = st.class_id WHERE c.academic_year_id = $1),
		   (SELECT COUNT(*) FROM classrooms WHERE academic_year_id = $1),
		   (SELECT COUNT(*) FROM subjects),
		   (SELECT COUNT(*) FROM exams WHERE academic_year_id = $1),
		   (SELECT COUNT(*) FROM tasks WHERE academic_year_id = $1),
		   (SELECT COUNT(*) FROM payments WHERE academic_year_id = $1)`,
		academicYearID,
	).Scan(&c.Students, &c.Classrooms, &c.Subjects, &c.Exams, &c.Tasks, &c.Payments)
	if err != nil {
		return nil, err
	}
	return c, nil
}
