package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql is the statement builder every repository uses
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	ProfileRepository           *ProfileRepository
	CourseRepository            *CourseRepository
	LectureRepository           *LectureRepository
	EnrollmentRepository        *EnrollmentRepository
	VerificationTokenRepository *VerificationTokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ProfileRepository:           NewProfileRepository(db),
		CourseRepository:            NewCourseRepository(db),
		LectureRepository:           NewLectureRepository(db),
		EnrollmentRepository:        NewEnrollmentRepository(db),
		VerificationTokenRepository: NewVerificationTokenRepository(db),
	}
}

// count runs a COUNT(*) builder and returns the result as an int
func count(ctx context.Context, db DBTX, q squirrel.SelectBuilder) (int, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}
