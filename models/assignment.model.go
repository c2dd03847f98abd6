package models

import "time"

type Assignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	LecturerID  uint       `json:"lecturer_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	FileURL     string     `json:"file_url"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AssignmentSubmission is a student's current submission; resubmitting replaces it.
type AssignmentSubmission struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	AssignmentID     uint      `json:"assignment_id" gorm:"not null;index:idx_submission_assignment_student,unique,priority:1"`
	StudentID        uint      `json:"student_id" gorm:"not null;index:idx_submission_assignment_student,unique,priority:2;index"`
	FileURL          string    `json:"file_url" gorm:"not null"`
	OriginalFileName string    `json:"original_file_name"`
	SubmittedAt      time.Time `json:"submitted_at" gorm:"not null"`
}
