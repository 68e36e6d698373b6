package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/logger"
	"github.com/yigit/lecturealert/internal/pkg/metrics"
)

// DefaultLimit caps the upcoming lecture list
const DefaultLimit = 5

// Summary holds the derived dashboard counts
type Summary struct {
	TotalCourses     int `json:"totalCourses"`
	UpcomingLectures int `json:"upcomingLectures"`
	TodayLectures    int `json:"todayLectures"`
	RelatedPeople    int `json:"relatedPeople"`
}

// Result is one completed aggregation
type Result struct {
	Role        models.Role      `json:"role"`
	Lectures    []models.Lecture `json:"lectures"`
	Summary     Summary          `json:"summary"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// Aggregator builds dashboards by dispatching an identity to its role plan
type Aggregator struct {
	src   Source
	now   func() time.Time
	loc   *time.Location
	limit int
	log   zerolog.Logger
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone whose calendar day counts as "today"
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLimit caps the upcoming list; non-positive values are ignored
func WithLimit(limit int) Option {
	return func(a *Aggregator) {
		if limit > 0 {
			a.limit = limit
		}
	}
}

// WithLogger sets the logger used for sub-query failures
func WithLogger(log zerolog.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// NewAggregator creates an Aggregator reading from src
func NewAggregator(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:   src,
		now:   time.Now,
		loc:   time.Local,
		limit: DefaultLimit,
		log:   logger.Component("dashboard"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate runs the identity's role plan. A nil identity does not run
// anything and returns apperrors.ErrNoIdentity; sub-query failures never
// surface as errors.
func (a *Aggregator) Aggregate(ctx context.Context, identity *models.Identity) (Result, error) {
	if identity == nil {
		return Result{}, apperrors.ErrNoIdentity
	}
	plan, err := PlanFor(identity.Role)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	now := a.now()
	f := &fetcher{
		src:   a.src,
		role:  identity.Role,
		from:  now,
		limit: a.limit,
		log:   a.log,
	}

	out := plan.run(ctx, f, *identity)
	lectures := normalize(out.lectures, out.courseIDs, now, a.limit)

	metrics.DashboardAggregationsTotal.WithLabelValues(string(identity.Role)).Inc()
	metrics.DashboardAggregationDuration.WithLabelValues(string(identity.Role)).Observe(time.Since(start).Seconds())

	return Result{
		Role:     identity.Role,
		Lectures: lectures,
		Summary: Summary{
			TotalCourses:     out.totalCourses,
			UpcomingLectures: len(lectures),
			TodayLectures:    countOnDay(lectures, now, a.loc),
			RelatedPeople:    out.relatedPeople,
		},
		GeneratedAt: now,
	}, nil
}

// normalize drops cancelled and past lectures and those outside courseIDs
// (when non-nil), sorts ascending by start time and truncates to limit.
func normalize(lectures []models.Lecture, courseIDs []string, now time.Time, limit int) []models.Lecture {
	var allowed map[string]struct{}
	if courseIDs != nil {
		allowed = make(map[string]struct{}, len(courseIDs))
		for _, id := range courseIDs {
			allowed[id] = struct{}{}
		}
	}

	out := make([]models.Lecture, 0, len(lectures))
	for _, l := range lectures {
		if !l.IsUpcoming(now) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[l.CourseID]; !ok {
				continue
			}
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// countOnDay counts lectures whose start falls on now's calendar day in loc
func countOnDay(lectures []models.Lecture, now time.Time, loc *time.Location) int {
	y, m, d := now.In(loc).Date()
	n := 0
	for _, l := range lectures {
		ly, lm, ld := l.ScheduledAt.In(loc).Date()
		if ly == y && lm == m && ld == d {
			n++
		}
	}
	return n
}
