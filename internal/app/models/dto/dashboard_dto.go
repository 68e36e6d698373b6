package dto

import (
	"time"

	"github.com/yigit/lecturealert/internal/app/dashboard"
	"github.com/yigit/lecturealert/internal/app/models"
)

// LectureItem is one row of the upcoming lectures list
type LectureItem struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CourseTitle     string    `json:"courseTitle"`
	CourseCode      string    `json:"courseCode"`
	LecturerName    string    `json:"lecturerName,omitempty"`
	ScheduledAt     time.Time `json:"scheduledAt"`
	DateLabel       string    `json:"dateLabel"`
	TimeLabel       string    `json:"timeLabel"`
	DurationMinutes int       `json:"durationMinutes"`
	Location        *string   `json:"location,omitempty"`
	MeetingURL      *string   `json:"meetingUrl,omitempty"`
}

// DashboardResponse is the rendered dashboard
type DashboardResponse struct {
	Greeting    string               `json:"greeting"`
	Role        models.Role          `json:"role"`
	Stats       []dashboard.StatCard `json:"stats"`
	Summary     dashboard.Summary    `json:"summary"`
	Lectures    []LectureItem        `json:"lectures"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Generation  uint64               `json:"generation"`
	Stale       bool                 `json:"stale"`
}

// NewDashboardResponse renders a snapshot for identity with labels in loc
func NewDashboardResponse(identity models.Identity, snap dashboard.Snapshot, fresh bool, loc *time.Location) DashboardResponse {
	items := make([]LectureItem, 0, len(snap.Lectures))
	for _, l := range snap.Lectures {
		items = append(items, LectureItem{
			ID:              l.ID,
			Title:           l.Title,
			CourseTitle:     l.CourseTitle,
			CourseCode:      l.CourseCode,
			LecturerName:    l.LecturerName,
			ScheduledAt:     l.ScheduledAt,
			DateLabel:       dashboard.DateLabel(l.ScheduledAt, snap.GeneratedAt, loc),
			TimeLabel:       dashboard.TimeLabel(l.ScheduledAt, loc),
			DurationMinutes: l.DurationMinutes,
			Location:        l.Location,
			MeetingURL:      l.MeetingURL,
		})
	}

	return DashboardResponse{
		Greeting:    dashboard.Greeting(identity),
		Role:        snap.Role,
		Stats:       dashboard.StatCards(snap.Role, snap.Summary),
		Summary:     snap.Summary,
		Lectures:    items,
		GeneratedAt: snap.GeneratedAt,
		Generation:  snap.Generation,
		Stale:       !fresh,
	}
}

// DashboardEvent tells open tabs that a newer dashboard was committed
type DashboardEvent struct {
	Role        models.Role       `json:"role"`
	Summary     dashboard.Summary `json:"summary"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Generation  uint64            `json:"generation"`
}

// NewDashboardEvent maps a committed snapshot
func NewDashboardEvent(snap dashboard.Snapshot) DashboardEvent {
	return DashboardEvent{
		Role:        snap.Role,
		Summary:     snap.Summary,
		GeneratedAt: snap.GeneratedAt,
		Generation:  snap.Generation,
	}
}
