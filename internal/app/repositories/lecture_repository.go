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

// UpcomingFilter narrows the upcoming-lectures query.
// A nil CourseIDs means every course; an empty non-nil slice matches nothing.
type UpcomingFilter struct {
	CourseIDs []string
	From      time.Time
	Limit     uint64
}

// LectureRepository handles database operations for lectures
type LectureRepository struct {
	db DBTX
}

// NewLectureRepository creates a new LectureRepository
func NewLectureRepository(db DBTX) *LectureRepository {
	return &LectureRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *LectureRepository) WithTx(tx pgx.Tx) *LectureRepository {
	return &LectureRepository{db: tx}
}

// upcomingSpec selects non-cancelled lectures at or after From,
// ordered by start time ascending.
func upcomingSpec(f UpcomingFilter) SelectSpec {
	spec := SelectSpec{
		Table: TableLectures + " l",
		Columns: []string{
			"l.id", "l.title", "l.description", "l.course_id", "l.scheduled_at",
			"l.duration_minutes", "l.location", "l.meeting_url", "l.is_cancelled",
			"c.title", "c.course_code", "COALESCE(p.full_name, '')",
		},
		Joins: []string{
			"JOIN courses c ON c.id = l.course_id",
			"LEFT JOIN profiles p ON p.id = c.lecturer_id",
		},
		Filters: []squirrel.Sqlizer{
			squirrel.GtOrEq{"l.scheduled_at": f.From},
			squirrel.Eq{"l.is_cancelled": false},
		},
		Order: []OrderBy{{Column: "l.scheduled_at"}, {Column: "l.id"}},
		Limit: f.Limit,
	}
	if f.CourseIDs != nil {
		spec.Filters = append(spec.Filters, squirrel.Eq{"l.course_id": f.CourseIDs})
	}
	return spec
}

// ListUpcoming returns upcoming lectures matching f
func (r *LectureRepository) ListUpcoming(ctx context.Context, f UpcomingFilter) ([]models.Lecture, error) {
	if f.CourseIDs != nil && len(f.CourseIDs) == 0 {
		return []models.Lecture{}, nil
	}

	q, err := upcomingSpec(f).Builder()
	if err != nil {
		return nil, err
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing upcoming lectures: %w", err)
	}
	defer rows.Close()

	lectures := []models.Lecture{}
	for rows.Next() {
		var l models.Lecture
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Description, &l.CourseID, &l.ScheduledAt,
			&l.DurationMinutes, &l.Location, &l.MeetingURL, &l.IsCancelled,
			&l.CourseTitle, &l.CourseCode, &l.LecturerName,
		); err != nil {
			return nil, fmt.Errorf("error scanning lecture: %w", err)
		}
		lectures = append(lectures, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lectures: %w", err)
	}
	return lectures, nil
}

// Create inserts a lecture
func (r *LectureRepository) Create(ctx context.Context, l *models.Lecture) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	query, args, err := psql.Insert(TableLectures).
		Columns("id", "course_id", "title", "description", "scheduled_at", "duration_minutes",
			"location", "meeting_url", "is_cancelled", "created_at", "updated_at").
		Values(l.ID, l.CourseID, l.Title, l.Description, l.ScheduledAt, l.DurationMinutes,
			l.Location, l.MeetingURL, l.IsCancelled, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating lecture: %w", err)
	}
	return nil
}
