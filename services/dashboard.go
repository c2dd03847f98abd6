package services

import (
	"context"
	"fmt"
	"lms/models"
)

type Dashboard struct {
	EnrolledCourses      int `json:"enrolled_courses"`
	QuizAttempts         int `json:"quiz_attempts"`
	QuizzesPassed        int `json:"quizzes_passed"`
	AssignmentsSubmitted int `json:"assignments_submitted"`
	SectionsCompleted    int `json:"sections_completed"`
	Badges               int `json:"badges"`
}

// Dashboard summarises a student's activity.
func (p *ProgressTracker) Dashboard(ctx context.Context, studentID uint) (*Dashboard, error) {
	db := p.conn(ctx)

	stats, err := p.badges.Stats(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var courses, attempts, badges int64
	if err := db.Model(&models.Course{}).
		Joins("JOIN enrollments ON enrollments.degree_id = courses.degree_id").
		Where("enrollments.student_id = ?", studentID).
		Count(&courses).Error; err != nil {
		return nil, fmt.Errorf("count enrolled courses: %w", err)
	}
	if err := db.Model(&models.QuizAttempt{}).Where("student_id = ?", studentID).Count(&attempts).Error; err != nil {
		return nil, fmt.Errorf("count quiz attempts: %w", err)
	}
	if err := db.Model(&models.UserBadge{}).Where("student_id = ?", studentID).Count(&badges).Error; err != nil {
		return nil, fmt.Errorf("count badges: %w", err)
	}

	return &Dashboard{
		EnrolledCourses:      int(courses),
		QuizAttempts:         int(attempts),
		QuizzesPassed:        stats.QuizzesPassed,
		AssignmentsSubmitted: stats.AssignmentsSubmitted,
		SectionsCompleted:    stats.SectionsCompleted,
		Badges:               int(badges),
	}, nil
}
