package models

import "time"

type Course struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Description   string    `json:"description"`
	InstitutionID uint      `json:"institution_id" gorm:"index;not null"`
	DegreeID      *uint     `json:"degree_id" gorm:"index"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CourseLecturer assigns a lecturer to teach a course.
type CourseLecturer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CourseID   uint      `json:"course_id" gorm:"not null;index:idx_course_lecturer,unique,priority:1"`
	LecturerID uint      `json:"lecturer_id" gorm:"not null;index:idx_course_lecturer,unique,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
}

type Lesson struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CourseID    uint      `json:"course_id" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
