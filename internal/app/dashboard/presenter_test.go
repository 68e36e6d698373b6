package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/lecturealert/internal/app/models"
)

func TestDateLabel(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today", DateLabel(time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, "Tomorrow", DateLabel(time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, "Jun 12", DateLabel(time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, "Jan 02", DateLabel(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, "14:05", TimeLabel(time.Date(2024, 6, 10, 14, 5, 0, 0, time.UTC), time.UTC))
}

func TestStatCards(t *testing.T) {
	s := Summary{TotalCourses: 3, UpcomingLectures: 2, TodayLectures: 1, RelatedPeople: 40}

	assert.Len(t, StatCards(models.RoleStudent, s), 3)

	lecturerCards := StatCards(models.RoleLecturer, s)
	assert.Len(t, lecturerCards, 4)
	assert.Equal(t, StatCard{Key: "relatedPeople", Title: "My Students", Value: 40}, lecturerCards[3])

	adminCards := StatCards(models.RoleAdmin, s)
	assert.Equal(t, "Total Students", adminCards[3].Title)
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Welcome back, Ada!", Greeting(models.Identity{FullName: "Ada"}))
}
