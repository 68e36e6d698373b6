package dashboard

import (
	"fmt"
	"time"

	"github.com/yigit/lecturealert/internal/app/models"
)

// StatCard is one tile of the dashboard header
type StatCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value int    `json:"value"`
}

// StatCards lists the tiles shown for role. Lecturers and admins get an
// extra people tile.
func StatCards(role models.Role, s Summary) []StatCard {
	cards := []StatCard{
		{Key: "totalCourses", Title: "Total Courses", Value: s.TotalCourses},
		{Key: "upcomingLectures", Title: "Upcoming Lectures", Value: s.UpcomingLectures},
		{Key: "todayLectures", Title: "Today's Lectures", Value: s.TodayLectures},
	}
	switch role {
	case models.RoleLecturer:
		cards = append(cards, StatCard{Key: "relatedPeople", Title: "My Students", Value: s.RelatedPeople})
	case models.RoleAdmin:
		cards = append(cards, StatCard{Key: "relatedPeople", Title: "Total Students", Value: s.RelatedPeople})
	}
	return cards
}

// Greeting is the dashboard headline
func Greeting(identity models.Identity) string {
	return fmt.Sprintf("Welcome back, %s!", identity.FullName)
}

// DateLabel renders t relative to now: "Today", "Tomorrow" or "Jan 02"
func DateLabel(t, now time.Time, loc *time.Location) string {
	t, now = t.In(loc), now.In(loc)
	ty, tm, td := t.Date()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch day := time.Date(ty, tm, td, 0, 0, 0, 0, loc); {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return t.Format("Jan 02")
	}
}

// TimeLabel renders the 24h wall-clock time of t in loc
func TimeLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}
