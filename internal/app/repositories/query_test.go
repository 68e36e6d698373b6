package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/lecturealert/internal/app/models"
)

func TestUpcomingQuery_RestrictsCourses(t *testing.T) {
	from := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	q, err := upcomingSpec(UpcomingFilter{
		CourseIDs: []string{"c1", "c2"},
		From:      from,
		Limit:     5,
	}).Builder()
	require.NoError(t, err)
	query, args, err := q.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM lectures l JOIN courses c ON c.id = l.course_id")
	assert.Contains(t, query, "LEFT JOIN profiles p ON p.id = c.lecturer_id")
	assert.Contains(t, query, "l.scheduled_at >= $1")
	assert.Contains(t, query, "l.is_cancelled = $2")
	assert.Contains(t, query, "l.course_id IN ($3,$4)")
	assert.Contains(t, query, "ORDER BY l.scheduled_at ASC, l.id ASC")
	assert.Contains(t, query, "LIMIT 5")
	assert.Equal(t, []interface{}{from, false, "c1", "c2"}, args)
}

func TestUpcomingQuery_AllCourses(t *testing.T) {
	q, err := upcomingSpec(UpcomingFilter{From: time.Unix(0, 0)}).Builder()
	require.NoError(t, err)
	query, args, err := q.ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "l.course_id IN")
	assert.NotContains(t, query, "LIMIT")
	assert.Len(t, args, 2)
}

func TestListUpcoming_EmptyCourseSetSkipsDatabase(t *testing.T) {
	// nil db: any query attempt would panic
	repo := NewLectureRepository(nil)

	lectures, err := repo.ListUpcoming(context.Background(), UpcomingFilter{CourseIDs: []string{}, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, lectures)
}

func TestCountByCourses_EmptySetIsZero(t *testing.T) {
	repo := NewEnrollmentRepository(nil)

	n, err := repo.CountByCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountQueries(t *testing.T) {
	query, args, err := countByRoleQuery(models.RoleStudent).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM profiles WHERE role = $1", query)
	assert.Equal(t, []interface{}{"student"}, args)

	query, args, err = countByCoursesQuery([]string{"a", "b", "c"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM enrollments WHERE course_id IN ($1,$2,$3)", query)
	assert.Equal(t, []interface{}{"a", "b", "c"}, args)

	query, args, err = activeByStudentQuery("s1").ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "WHERE student_id = $1 AND is_active = $2")
	assert.Equal(t, []interface{}{"s1", true}, args)
}

func TestSelectSpec(t *testing.T) {
	_, err := SelectSpec{}.Builder()
	assert.ErrorIs(t, err, errNoTable)

	q, err := SelectSpec{
		Table:   TableCourses,
		Columns: []string{"id", "title"},
		Filters: []squirrel.Sqlizer{squirrel.Eq{"lecturer_id": "u1"}},
		Order:   []OrderBy{{Column: "created_at", Descending: true}},
		Limit:   3,
	}.Builder()
	require.NoError(t, err)

	query, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, title FROM courses WHERE lecturer_id = $1 ORDER BY created_at DESC LIMIT 3", query)
	assert.Equal(t, []interface{}{"u1"}, args)
}
