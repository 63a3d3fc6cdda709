package model

// ActivityFilter carries the list parameters shared by all cohort activity
// listings. SortBy is validated against a per-repository column whitelist;
// unknown columns fall back to the default ordering.
type ActivityFilter struct {
	Search         string
	SortBy         string
	Direction      string
	AcademicYearID int
	Page           int
	PerPage        int
}

// Normalize clamps pagination values into their allowed ranges and
// canonicalizes the sort direction.
func (f *ActivityFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
	if f.Direction != "asc" && f.Direction != "desc" {
		f.Direction = "desc"
	}
}

// Limit returns the SQL LIMIT value.
func (f ActivityFilter) Limit() int { return f.PerPage }

// Offset returns the SQL OFFSET value.
func (f ActivityFilter) Offset() int { return (f.Page - 1) * f.PerPage }
