// Package seed fills an empty database with demo accounts, courses and lectures.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/lecturealert/internal/app/models"
	appRepos "github.com/yigit/lecturealert/internal/app/repositories"
	"github.com/yigit/lecturealert/internal/db"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/auth"
)

// DemoPassword is shared by every seeded account
const DemoPassword = "password123"

// AdminEmail marks a seeded database
const AdminEmail = "admin@lecturealert.app"

// Data is the demo dataset, linked by index
type Data struct {
	Profiles    []appModels.Profile
	Courses     []appModels.Course
	Lectures    []appModels.Lecture
	Enrollments []appModels.Enrollment
}

func ptr(s string) *string { return &s }

// Demo builds the demo dataset with lectures scheduled around now
func Demo(now time.Time) Data {
	day := now.Truncate(time.Hour)

	admin := appModels.Profile{ID: "00000000-0000-4000-8000-000000000001", Email: AdminEmail, FullName: "System Administrator", Role: appModels.RoleAdmin}
	lecturer := appModels.Profile{ID: "00000000-0000-4000-8000-000000000002", Email: "lecturer@lecturealert.app", FullName: "Ada Lovelace", Role: appModels.RoleLecturer}
	student := appModels.Profile{ID: "00000000-0000-4000-8000-000000000003", Email: "student@lecturealert.app", FullName: "Alan Turing", Role: appModels.RoleStudent}

	algorithms := appModels.Course{ID: "00000000-0000-4000-8000-000000000101", Title: "Algorithms", Code: "CS201", LecturerID: lecturer.ID, Color: "#3B82F6", IsActive: true,
		Description: ptr("Design and analysis of algorithms")}
	databases := appModels.Course{ID: "00000000-0000-4000-8000-000000000102", Title: "Databases", Code: "CS305", LecturerID: lecturer.ID, Color: "#10B981", IsActive: true}
	compilers := appModels.Course{ID: "00000000-0000-4000-8000-000000000103", Title: "Compilers", Code: "CS410", LecturerID: lecturer.ID, Color: "#F59E0B", IsActive: true}

	lectures := []appModels.Lecture{
		{Title: "Sorting", CourseID: algorithms.ID, ScheduledAt: day.Add(2 * time.Hour), DurationMinutes: 90, Location: ptr("Room 101")},
		{Title: "Graphs", CourseID: algorithms.ID, ScheduledAt: day.Add(26 * time.Hour), DurationMinutes: 90, Location: ptr("Room 101")},
		{Title: "Dynamic Programming", CourseID: algorithms.ID, ScheduledAt: day.Add(74 * time.Hour), DurationMinutes: 90, MeetingURL: ptr("https://meet.example.com/cs201")},
		{Title: "Normal Forms", CourseID: databases.ID, ScheduledAt: day.Add(4 * time.Hour), DurationMinutes: 60, Location: ptr("Lab 2")},
		{Title: "Transactions", CourseID: databases.ID, ScheduledAt: day.Add(50 * time.Hour), DurationMinutes: 60, Location: ptr("Lab 2")},
		{Title: "Indexing", CourseID: databases.ID, ScheduledAt: day.Add(98 * time.Hour), DurationMinutes: 60, IsCancelled: true},
		{Title: "Parsing", CourseID: compilers.ID, ScheduledAt: day.Add(28 * time.Hour), DurationMinutes: 120, Location: ptr("Room 204")},
		{Title: "Lexing", CourseID: compilers.ID, ScheduledAt: day.Add(-48 * time.Hour), DurationMinutes: 120, Location: ptr("Room 204")},
	}

	return Data{
		Profiles: []appModels.Profile{admin, lecturer, student},
		Courses:  []appModels.Course{algorithms, databases, compilers},
		Lectures: lectures,
		Enrollments: []appModels.Enrollment{
			{StudentID: student.ID, CourseID: algorithms.ID, IsActive: true},
			{StudentID: student.ID, CourseID: databases.ID, IsActive: true},
			{StudentID: student.ID, CourseID: compilers.ID, IsActive: false},
		},
	}
}

// CreateDemoData seeds the demo dataset in one transaction unless the admin account exists
func CreateDemoData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(database.Pool)

	_, err := repos.ProfileRepository.GetByEmail(ctx, AdminEmail)
	switch {
	case err == nil:
		lgr.Info().Msg("Demo data already present, skipping seed")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("error checking for demo data: %w", err)
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("error hashing demo password: %w", err)
	}

	data := Demo(time.Now().UTC())
	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		profiles := repos.ProfileRepository.WithTx(tx)
		courses := repos.CourseRepository.WithTx(tx)
		lectures := repos.LectureRepository.WithTx(tx)
		enrollments := repos.EnrollmentRepository.WithTx(tx)

		for i := range data.Profiles {
			p := &data.Profiles[i]
			p.PasswordHash = hash
			p.EmailVerified = true
			if err := profiles.Create(ctx, p); err != nil {
				return err
			}
		}
		for i := range data.Courses {
			if err := courses.Create(ctx, &data.Courses[i]); err != nil {
				return err
			}
		}
		for i := range data.Lectures {
			if err := lectures.Create(ctx, &data.Lectures[i]); err != nil {
				return err
			}
		}
		for i := range data.Enrollments {
			if err := enrollments.Create(ctx, &data.Enrollments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error seeding demo data: %w", err)
	}

	lgr.Info().
		Int("profiles", len(data.Profiles)).
		Int("courses", len(data.Courses)).
		Int("lectures", len(data.Lectures)).
		Msg("Demo data created")
	return nil
}
