package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"
)

// Table names read by the dashboard
const (
	TableProfiles    = "profiles"
	TableCourses     = "courses"
	TableLectures    = "lectures"
	TableEnrollments = "enrollments"
)

var errNoTable = errors.New("select spec: table is required")

// OrderBy is a single sort key
type OrderBy struct {
	Column     string
	Descending bool
}

func (o OrderBy) String() string {
	if o.Descending {
		return o.Column + " DESC"
	}
	return o.Column + " ASC"
}

// SelectSpec is a parameterized table-select: projection (joined columns included),
// filters, ordering and row limit. Limit 0 means unlimited.
type SelectSpec struct {
	Table   string
	Columns []string
	Joins   []string
	Filters []squirrel.Sqlizer
	Order   []OrderBy
	Limit   uint64
}

// Builder renders the spec with the repository placeholder format
func (s SelectSpec) Builder() (squirrel.SelectBuilder, error) {
	if s.Table == "" {
		return squirrel.SelectBuilder{}, errNoTable
	}
	cols := s.Columns
	if len(cols) == 0 {
		cols = []string{"*"}
	}

	q := psql.Select(cols...).From(s.Table)
	for _, j := range s.Joins {
		q = q.JoinClause(j)
	}
	for _, f := range s.Filters {
		q = q.Where(f)
	}
	for _, o := range s.Order {
		q = q.OrderBy(o.String())
	}
	if s.Limit > 0 {
		q = q.Limit(s.Limit)
	}
	return q, nil
}
