package dashboard

import (
	"context"
	"time"

	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/app/repositories"
)

// Source is the read side the role plans query
type Source interface {
	ActiveEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error)
	CoursesByLecturer(ctx context.Context, lecturerID string) ([]models.Course, error)
	CountCourses(ctx context.Context) (int, error)
	// UpcomingLectures with nil courseIDs is unrestricted
	UpcomingLectures(ctx context.Context, courseIDs []string, from time.Time, limit int) ([]models.Lecture, error)
	CountEnrollments(ctx context.Context, courseIDs []string) (int, error)
	CountProfiles(ctx context.Context, role models.Role) (int, error)
}

// RepositorySource serves Source from the PostgreSQL repositories
type RepositorySource struct {
	repos *repositories.Repositories
}

// NewRepositorySource wraps repos
func NewRepositorySource(repos *repositories.Repositories) *RepositorySource {
	return &RepositorySource{repos: repos}
}

func (s *RepositorySource) ActiveEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.repos.EnrollmentRepository.ListActiveByStudent(ctx, studentID)
}

func (s *RepositorySource) CoursesByLecturer(ctx context.Context, lecturerID string) ([]models.Course, error) {
	return s.repos.CourseRepository.ListByLecturer(ctx, lecturerID)
}

func (s *RepositorySource) CountCourses(ctx context.Context) (int, error) {
	return s.repos.CourseRepository.CountAll(ctx)
}

func (s *RepositorySource) UpcomingLectures(ctx context.Context, courseIDs []string, from time.Time, limit int) ([]models.Lecture, error) {
	return s.repos.LectureRepository.ListUpcoming(ctx, repositories.UpcomingFilter{
		CourseIDs: courseIDs,
		From:      from,
		Limit:     uint64(limit),
	})
}

func (s *RepositorySource) CountEnrollments(ctx context.Context, courseIDs []string) (int, error) {
	return s.repos.EnrollmentRepository.CountByCourses(ctx, courseIDs)
}

func (s *RepositorySource) CountProfiles(ctx context.Context, role models.Role) (int, error) {
	return s.repos.ProfileRepository.CountByRole(ctx, role)
}
