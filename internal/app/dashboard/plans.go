package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Sub-query names used in logs and metrics
const (
	queryEnrollments      = "enrollments"
	queryCourses          = "courses"
	queryUpcomingLectures = "upcoming_lectures"
	queryEnrollmentCount  = "enrollment_count"
	queryStudentCount     = "student_count"
)

// planOutput is what a plan gathered before normalization.
// A nil courseIDs means the lectures are not restricted to a course set.
type planOutput struct {
	lectures      []models.Lecture
	courseIDs     []string
	totalCourses  int
	relatedPeople int
}

// Plan is the role-specific sequence of queries behind a dashboard
type Plan interface {
	Role() models.Role
	run(ctx context.Context, f *fetcher, identity models.Identity) planOutput
}

// PlanFor returns the plan for role
func PlanFor(role models.Role) (Plan, error) {
	switch role {
	case models.RoleStudent:
		return studentPlan{}, nil
	case models.RoleLecturer:
		return lecturerPlan{}, nil
	case models.RoleAdmin:
		return adminPlan{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidRole, role)
	}
}

type studentPlan struct{}

func (studentPlan) Role() models.Role { return models.RoleStudent }

func (studentPlan) run(ctx context.Context, f *fetcher, identity models.Identity) planOutput {
	enrollments := f.enrollments(ctx, identity.ID)

	courseIDs := make([]string, 0, len(enrollments))
	seen := make(map[string]struct{}, len(enrollments))
	for _, e := range enrollments {
		if _, ok := seen[e.CourseID]; ok {
			continue
		}
		seen[e.CourseID] = struct{}{}
		courseIDs = append(courseIDs, e.CourseID)
	}

	return planOutput{
		lectures:      f.upcoming(ctx, courseIDs),
		courseIDs:     courseIDs,
		totalCourses:  len(enrollments),
		relatedPeople: len(enrollments),
	}
}

type lecturerPlan struct{}

func (lecturerPlan) Role() models.Role { return models.RoleLecturer }

func (lecturerPlan) run(ctx context.Context, f *fetcher, identity models.Identity) planOutput {
	courses := f.coursesByLecturer(ctx, identity.ID)
	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		courseIDs = append(courseIDs, c.ID)
	}

	out := planOutput{courseIDs: courseIDs, totalCourses: len(courses)}

	var g errgroup.Group
	g.Go(func() error {
		out.lectures = f.upcoming(ctx, courseIDs)
		return nil
	})
	g.Go(func() error {
		out.relatedPeople = f.enrollmentCount(ctx, courseIDs)
		return nil
	})
	_ = g.Wait()

	return out
}

type adminPlan struct{}

func (adminPlan) Role() models.Role { return models.RoleAdmin }

func (adminPlan) run(ctx context.Context, f *fetcher, _ models.Identity) planOutput {
	var out planOutput

	var g errgroup.Group
	g.Go(func() error {
		out.totalCourses = f.courseCount(ctx)
		return nil
	})
	g.Go(func() error {
		out.lectures = f.upcoming(ctx, nil)
		return nil
	})
	g.Go(func() error {
		out.relatedPeople = f.studentCount(ctx)
		return nil
	})
	_ = g.Wait()

	return out
}

// fetcher runs sub-queries for one aggregation. A failed sub-query is logged,
// counted and replaced by an empty value.
type fetcher struct {
	src   Source
	role  models.Role
	from  time.Time
	limit int
	log   zerolog.Logger
}

func (f *fetcher) fail(query string, err error) {
	f.log.Warn().Err(err).
		Str("role", string(f.role)).
		Str("query", query).
		Msg("Dashboard sub-query failed, using empty result")
	metrics.DashboardSubqueryFailuresTotal.WithLabelValues(string(f.role), query).Inc()
}

func (f *fetcher) enrollments(ctx context.Context, studentID string) []models.Enrollment {
	rows, err := f.src.ActiveEnrollments(ctx, studentID)
	if err != nil {
		f.fail(queryEnrollments, err)
		return nil
	}
	return rows
}

func (f *fetcher) coursesByLecturer(ctx context.Context, lecturerID string) []models.Course {
	rows, err := f.src.CoursesByLecturer(ctx, lecturerID)
	if err != nil {
		f.fail(queryCourses, err)
		return nil
	}
	return rows
}

// upcoming skips the store entirely for an empty, non-nil course set
func (f *fetcher) upcoming(ctx context.Context, courseIDs []string) []models.Lecture {
	if courseIDs != nil && len(courseIDs) == 0 {
		return nil
	}
	rows, err := f.src.UpcomingLectures(ctx, courseIDs, f.from, f.limit)
	if err != nil {
		f.fail(queryUpcomingLectures, err)
		return nil
	}
	return rows
}

func (f *fetcher) enrollmentCount(ctx context.Context, courseIDs []string) int {
	if len(courseIDs) == 0 {
		return 0
	}
	n, err := f.src.CountEnrollments(ctx, courseIDs)
	if err != nil {
		f.fail(queryEnrollmentCount, err)
		return 0
	}
	return n
}

func (f *fetcher) courseCount(ctx context.Context) int {
	n, err := f.src.CountCourses(ctx)
	if err != nil {
		f.fail(queryCourses, err)
		return 0
	}
	return n
}

func (f *fetcher) studentCount(ctx context.Context) int {
	n, err := f.src.CountProfiles(ctx, models.RoleStudent)
	if err != nil {
		f.fail(queryStudentCount, err)
		return 0
	}
	return n
}
