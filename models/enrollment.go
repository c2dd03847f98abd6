package models

import "time"

// Enrollment ties a student to a degree. Progress is recalculated from
// SectionProgress and never edited by hand.
type Enrollment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StudentID   uint      `json:"student_id" gorm:"not null;index:idx_enrollment_student_degree,unique,priority:1"`
	DegreeID    uint      `json:"degree_id" gorm:"not null;index:idx_enrollment_student_degree,unique,priority:2"`
	Progress    float64   `json:"progress" gorm:"default:0"` // 0-100
	IsCompleted bool      `json:"is_completed" gorm:"default:false"`
	EnrolledAt  time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SectionProgress records that a student completed a section. Presence is completion.
type SectionProgress struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StudentID   uint      `json:"student_id" gorm:"not null;index:idx_progress_student_section,unique,priority:1"`
	SectionID   uint      `json:"section_id" gorm:"not null;index:idx_progress_student_section,unique,priority:2;index"`
	CompletedAt time.Time `json:"completed_at" gorm:"not null"`
}
