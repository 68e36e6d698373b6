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

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db DBTX
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *EnrollmentRepository) WithTx(tx pgx.Tx) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

// ListActiveByStudent returns the student's active enrollments
func (r *EnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	query, args, err := activeByStudentQuery(studentID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.EnrolledAt, &e.IsActive); err != nil {
			return nil, fmt.Errorf("error scanning enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}
	return enrollments, nil
}

// CountByCourses counts enrollment rows whose course is in courseIDs.
// An empty set counts zero without touching the database.
func (r *EnrollmentRepository) CountByCourses(ctx context.Context, courseIDs []string) (int, error) {
	if len(courseIDs) == 0 {
		return 0, nil
	}
	n, err := count(ctx, r.db, countByCoursesQuery(courseIDs))
	if err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return n, nil
}

func activeByStudentQuery(studentID string) squirrel.SelectBuilder {
	return psql.Select("id", "student_id", "course_id", "enrolled_at", "is_active").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("enrolled_at ASC")
}

func countByCoursesQuery(courseIDs []string) squirrel.SelectBuilder {
	return psql.Select("COUNT(*)").From("enrollments").Where(squirrel.Eq{"course_id": courseIDs})
}

// Create enrolls a student. ID and enrolled_at are filled in when empty.
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}

	query, args, err := psql.Insert(TableEnrollments).
		Columns("id", "student_id", "course_id", "enrolled_at", "is_active").
		Values(e.ID, e.StudentID, e.CourseID, e.EnrolledAt, e.IsActive).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}
