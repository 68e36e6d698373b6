package models

import "time"

// Enrollment links a student to a course
type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"studentId" db:"student_id"`
	CourseID   string    `json:"courseId" db:"course_id"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`
	IsActive   bool      `json:"isActive" db:"is_active"`
}
