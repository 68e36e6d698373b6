package models

import "time"

// Lecture is a row of the 'lectures' table joined with its course and lecturer
type Lecture struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description,omitempty" db:"description"`
	CourseID        string    `json:"courseId" db:"course_id"`
	ScheduledAt     time.Time `json:"scheduledAt" db:"scheduled_at"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	Location        *string   `json:"location,omitempty" db:"location"`
	MeetingURL      *string   `json:"meetingUrl,omitempty" db:"meeting_url"`
	IsCancelled     bool      `json:"isCancelled" db:"is_cancelled"`

	// Joined columns
	CourseTitle  string `json:"courseTitle,omitempty"`
	CourseCode   string `json:"courseCode,omitempty"`
	LecturerName string `json:"lecturerName,omitempty"`
}

// IsUpcoming reports whether the lecture is non-cancelled and scheduled at or after now
func (l *Lecture) IsUpcoming(now time.Time) bool {
	return !l.IsCancelled && !l.ScheduledAt.Before(now)
}
