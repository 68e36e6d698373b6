package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/lecturealert/internal/app/models"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db DBTX
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *CourseRepository) WithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

func selectCoursesQuery() squirrel.SelectBuilder {
	return psql.Select("id", "title", "course_code", "description", "lecturer_id", "color", "is_active", "created_at").
		From("courses")
}

// ListByLecturer returns the courses taught by lecturerID
func (r *CourseRepository) ListByLecturer(ctx context.Context, lecturerID string) ([]models.Course, error) {
	return r.list(ctx, selectCoursesQuery().Where(squirrel.Eq{"lecturer_id": lecturerID}).OrderBy("title ASC"))
}

// ListAll returns every course
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	return r.list(ctx, selectCoursesQuery().OrderBy("title ASC"))
}

// CountAll counts every course
func (r *CourseRepository) CountAll(ctx context.Context) (int, error) {
	n, err := count(ctx, r.db, psql.Select("COUNT(*)").From("courses"))
	if err != nil {
		return 0, fmt.Errorf("error counting courses: %w", err)
	}
	return n, nil
}

func (r *CourseRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.Course, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Code, &c.Description, &c.LecturerID, &c.Color, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// Create inserts a course. ID and created_at are filled in when empty.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query, args, err := psql.Insert(TableCourses).
		Columns("id", "title", "course_code", "description", "lecturer_id", "color", "is_active", "created_at", "updated_at").
		Values(c.ID, c.Title, c.Code, c.Description, c.LecturerID, c.Color, c.IsActive, c.CreatedAt, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}
