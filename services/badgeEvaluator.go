package services

import (
	"context"
	"errors"
	"fmt"
	"lms/config"
	"lms/models"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	BadgeSectionStarter  = "Section Starter"
	BadgeSectionExplorer = "Section Explorer"
	BadgeSectionPro      = "Section Pro"
	BadgeFirstQuizWin    = "First Quiz Win"
	BadgeQuizWarrior     = "Quiz Warrior"
	BadgeQuizMaster      = "Quiz Master"
	BadgeFirstSubmission = "First Submission"
	BadgeOnARoll         = "On a Roll"
	BadgeAssignmentHero  = "Assignment Hero"
	BadgeEarlyBird       = "Early Bird"
	BadgeAlwaysOnTime    = "Always On Time"
	BadgePerfectQuiz     = "Perfect Quiz Score"
	BadgeCourseFinisher  = "Course Finisher"
)

// earlyMargin is how long before the due date a submission must arrive to count as early.
const earlyMargin = 24 * time.Hour

// Stats are the cumulative counters badges are computed from.
type Stats struct {
	SectionsCompleted    int `json:"sections_completed"`
	QuizzesPassed        int `json:"quizzes_passed"`
	PerfectAttempts      int `json:"perfect_attempts"`
	AssignmentsSubmitted int `json:"assignments_submitted"`
	OnTimeSubmissions    int `json:"on_time_submissions"`
	EarlySubmissions     int `json:"early_submissions"`
}

type badgeRule struct {
	name      string
	threshold int
	counter   func(Stats) int
}

var badgeRules = []badgeRule{
	{BadgeSectionStarter, 1, func(s Stats) int { return s.SectionsCompleted }},
	{BadgeSectionExplorer, 5, func(s Stats) int { return s.SectionsCompleted }},
	{BadgeSectionPro, 10, func(s Stats) int { return s.SectionsCompleted }},
	{BadgeFirstQuizWin, 1, func(s Stats) int { return s.QuizzesPassed }},
	{BadgeQuizWarrior, 3, func(s Stats) int { return s.QuizzesPassed }},
	{BadgeQuizMaster, 5, func(s Stats) int { return s.QuizzesPassed }},
	{BadgeFirstSubmission, 1, func(s Stats) int { return s.AssignmentsSubmitted }},
	{BadgeOnARoll, 5, func(s Stats) int { return s.AssignmentsSubmitted }},
	{BadgeAssignmentHero, 10, func(s Stats) int { return s.AssignmentsSubmitted }},
	{BadgeEarlyBird, 1, func(s Stats) int { return s.EarlySubmissions }},
	{BadgeAlwaysOnTime, 5, func(s Stats) int { return s.OnTimeSubmissions }},
	{BadgePerfectQuiz, 1, func(s Stats) int { return s.PerfectAttempts }},
}

// DefaultCatalog is the badge set seeded into a fresh installation.
var DefaultCatalog = []models.Badge{
	{Name: BadgeSectionStarter, Description: "Completed your first section", Criteria: "1 section completed"},
	{Name: BadgeSectionExplorer, Description: "Completed five sections", Criteria: "5 sections completed"},
	{Name: BadgeSectionPro, Description: "Completed ten sections", Criteria: "10 sections completed"},
	{Name: BadgeFirstQuizWin, Description: "Passed your first quiz", Criteria: "1 quiz passed"},
	{Name: BadgeQuizWarrior, Description: "Passed three quizzes", Criteria: "3 quizzes passed"},
	{Name: BadgeQuizMaster, Description: "Passed five quizzes", Criteria: "5 quizzes passed"},
	{Name: BadgeFirstSubmission, Description: "Submitted your first assignment", Criteria: "1 assignment submitted"},
	{Name: BadgeOnARoll, Description: "Submitted five assignments", Criteria: "5 assignments submitted"},
	{Name: BadgeAssignmentHero, Description: "Submitted ten assignments", Criteria: "10 assignments submitted"},
	{Name: BadgeEarlyBird, Description: "Submitted an assignment a day early", Criteria: "1 submission at least 24h before the due date"},
	{Name: BadgeAlwaysOnTime, Description: "Five assignments in on time", Criteria: "5 submissions on or before the due date"},
	{Name: BadgePerfectQuiz, Description: "Scored 100% on a quiz", Criteria: "1 attempt scoring 100%"},
	{Name: BadgeCourseFinisher, Description: "Completed every section of a course", Criteria: "all sections of a course completed"},
}

// BadgeEvaluator awards badges from a student's cumulative activity.
type BadgeEvaluator struct {
	*base
}

// Stats computes the student's current counters.
func (e *BadgeEvaluator) Stats(ctx context.Context, studentID uint) (Stats, error) {
	db := e.conn(ctx)
	var stats Stats
	var n int64

	if err := db.Model(&models.SectionProgress{}).Where("student_id = ?", studentID).Count(&n).Error; err != nil {
		return stats, fmt.Errorf("count completed sections: %w", err)
	}
	stats.SectionsCompleted = int(n)

	if err := db.Model(&models.QuizAttempt{}).
		Where("student_id = ? AND pass_status = ?", studentID, true).
		Distinct("quiz_id").Count(&n).Error; err != nil {
		return stats, fmt.Errorf("count passed quizzes: %w", err)
	}
	stats.QuizzesPassed = int(n)

	if err := db.Model(&models.QuizAttempt{}).
		Where("student_id = ? AND score >= ?", studentID, 100).
		Count(&n).Error; err != nil {
		return stats, fmt.Errorf("count perfect attempts: %w", err)
	}
	stats.PerfectAttempts = int(n)

	type timing struct {
		SubmittedAt time.Time
		DueDate     *time.Time
	}
	var timings []timing
	if err := db.Model(&models.AssignmentSubmission{}).
		Select("assignment_submissions.submitted_at, assignments.due_date").
		Joins("JOIN assignments ON assignments.id = assignment_submissions.assignment_id").
		Where("assignment_submissions.student_id = ?", studentID).
		Scan(&timings).Error; err != nil {
		return stats, fmt.Errorf("load submissions: %w", err)
	}

	stats.AssignmentsSubmitted = len(timings)
	for _, t := range timings {
		if t.DueDate == nil || t.SubmittedAt.After(*t.DueDate) {
			continue
		}
		stats.OnTimeSubmissions++
		if t.DueDate.Sub(t.SubmittedAt) >= earlyMargin {
			stats.EarlySubmissions++
		}
	}

	return stats, nil
}

// Evaluate awards every badge the student now qualifies for and returns the ones
// that were not held before. courseID, when set, also checks Course Finisher.
func (e *BadgeEvaluator) Evaluate(ctx context.Context, studentID uint, courseID *uint) ([]models.Badge, error) {
	stats, err := e.Stats(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var earned []string
	for _, rule := range badgeRules {
		if rule.counter(stats) >= rule.threshold {
			earned = append(earned, rule.name)
		}
	}

	if courseID != nil {
		finished, err := e.courseFinished(ctx, studentID, *courseID)
		if err != nil {
			return nil, err
		}
		if finished {
			earned = append(earned, BadgeCourseFinisher)
		}
	}

	awarded := []models.Badge{}
	for _, name := range earned {
		badge, isNew, err := e.award(ctx, studentID, name)
		if err != nil {
			return awarded, err
		}
		if isNew {
			awarded = append(awarded, *badge)
		}
	}
	return awarded, nil
}

func (e *BadgeEvaluator) courseFinished(ctx context.Context, studentID, courseID uint) (bool, error) {
	db := e.conn(ctx)

	var total int64
	if err := db.Model(&models.Section{}).
		Joins("JOIN lessons ON lessons.id = sections.lesson_id").
		Where("lessons.course_id = ?", courseID).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("count course sections: %w", err)
	}
	if total == 0 {
		return false, nil
	}

	var completed int64
	if err := db.Model(&models.SectionProgress{}).
		Joins("JOIN sections ON sections.id = section_progresses.section_id").
		Joins("JOIN lessons ON lessons.id = sections.lesson_id").
		Where("lessons.course_id = ? AND section_progresses.student_id = ?", courseID, studentID).
		Count(&completed).Error; err != nil {
		return false, fmt.Errorf("count completed course sections: %w", err)
	}
	return completed == total, nil
}

// award grants the named badge once. A badge missing from the catalog is skipped.
func (e *BadgeEvaluator) award(ctx context.Context, studentID uint, name string) (*models.Badge, bool, error) {
	log := config.WithContext(ctx)
	db := e.conn(ctx)

	var badge models.Badge
	if err := db.Where("name = ?", name).First(&badge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithFields(logrus.Fields{"badge": name, "student_id": studentID}).
				Warn("Badge missing from catalog, skipping award")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load badge %q: %w", name, err)
	}

	var held int64
	if err := db.Model(&models.UserBadge{}).
		Where("student_id = ? AND badge_id = ?", studentID, badge.ID).
		Count(&held).Error; err != nil {
		return nil, false, fmt.Errorf("check user badge: %w", err)
	}
	if held > 0 {
		return &badge, false, nil
	}

	grant := models.UserBadge{StudentID: studentID, BadgeID: badge.ID, AwardedAt: e.now()}
	if err := db.Create(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &badge, false, nil
		}
		return nil, false, fmt.Errorf("award badge %q: %w", name, err)
	}

	log.WithFields(logrus.Fields{"badge": name, "student_id": studentID}).Info("Badge awarded")
	return &badge, true, nil
}

// Badges lists the badges a student holds, oldest first.
func (e *BadgeEvaluator) Badges(ctx context.Context, studentID uint) ([]models.UserBadge, error) {
	var held []models.UserBadge
	err := e.conn(ctx).Preload("Badge").
		Where("student_id = ?", studentID).
		Order("awarded_at ASC, id ASC").
		Find(&held).Error
	if err != nil {
		return nil, fmt.Errorf("list user badges: %w", err)
	}
	return held, nil
}

// SeedCatalog inserts any DefaultCatalog badge that does not exist yet and
// returns how many were created.
func (e *BadgeEvaluator) SeedCatalog(ctx context.Context) (int, error) {
	created := 0
	for _, def := range DefaultCatalog {
		var exists int64
		if err := e.conn(ctx).Model(&models.Badge{}).Where("name = ?", def.Name).Count(&exists).Error; err != nil {
			return created, fmt.Errorf("check badge %q: %w", def.Name, err)
		}
		if exists > 0 {
			continue
		}

		badge := def
		if err := e.conn(ctx).Create(&badge).Error; err != nil {
			return created, fmt.Errorf("seed badge %q: %w", def.Name, err)
		}
		created++
	}
	return created, nil
}
