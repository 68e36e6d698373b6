package models

import "time"

// Course is a row of the 'courses' table. One lecturer owns many courses.
type Course struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Code        string    `json:"code" db:"course_code"`
	Description *string   `json:"description,omitempty" db:"description"`
	LecturerID  string    `json:"lecturerId" db:"lecturer_id"`
	Color       string    `json:"color" db:"color"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
