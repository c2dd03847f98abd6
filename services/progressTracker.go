package services

import (
	"context"
	"errors"
	"fmt"
	"lms/config"
	"lms/models"
	"time"

	"github.com/jinzhu/now"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProgressTracker owns section completion and the progress figures derived from it.
type ProgressTracker struct {
	*base
	badges *BadgeEvaluator
}

type CompletionResult struct {
	AlreadyCompleted bool                    `json:"already_completed"`
	Progress         *models.SectionProgress `json:"progress"`
	NewBadges        []models.Badge          `json:"new_badges"`
}

type LessonProgress struct {
	LessonID          uint    `json:"lesson_id"`
	Title             string  `json:"title"`
	TotalSections     int     `json:"total_sections"`
	CompletedSections int     `json:"completed_sections"`
	Percentage        float64 `json:"percentage"`
	IsComplete        bool    `json:"is_complete"`
}

type CourseProgress struct {
	CourseID         uint             `json:"course_id"`
	TotalLessons     int              `json:"total_lessons"`
	CompletedLessons int              `json:"completed_lessons"`
	Percentage       float64          `json:"percentage"`
	Lessons          []LessonProgress `json:"lessons"`
}

// sectionActive: unscheduled sections are always open, scheduled ones open on
// their week's start date and stay open.
func sectionActive(week *models.CalendarWeek, at time.Time) bool {
	if week == nil {
		return true
	}
	today := now.With(at).BeginningOfDay()
	return !today.Before(now.With(week.StartDate.In(at.Location())).BeginningOfDay())
}

func sectionCurrentWeek(week *models.CalendarWeek, at time.Time) bool {
	if week == nil {
		return false
	}
	today := now.With(at).BeginningOfDay()
	start := now.With(week.StartDate.In(at.Location())).BeginningOfDay()
	end := now.With(week.EndDate.In(at.Location())).BeginningOfDay()
	return !today.Before(start) && !today.After(end)
}

func (p *ProgressTracker) week(db *gorm.DB, section *models.Section) (*models.CalendarWeek, error) {
	if section.CalendarWeekID == nil {
		return nil, nil
	}
	var week models.CalendarWeek
	if err := db.First(&week, *section.CalendarWeekID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// dangling week reference, treat as unscheduled
			return nil, nil
		}
		return nil, fmt.Errorf("load calendar week %d: %w", *section.CalendarWeekID, err)
	}
	return &week, nil
}

// IsActive reports whether the section is open for completion today.
func (p *ProgressTracker) IsActive(ctx context.Context, section *models.Section) (bool, error) {
	week, err := p.week(p.conn(ctx), section)
	if err != nil {
		return false, err
	}
	return sectionActive(week, p.now()), nil
}

// IsCurrentWeek reports whether today falls inside the section's week.
func (p *ProgressTracker) IsCurrentWeek(ctx context.Context, section *models.Section) (bool, error) {
	week, err := p.week(p.conn(ctx), section)
	if err != nil {
		return false, err
	}
	return sectionCurrentWeek(week, p.now()), nil
}

// CompleteSection marks a section complete for the student. Completing twice is a no-op.
func (p *ProgressTracker) CompleteSection(ctx context.Context, studentID, sectionID uint) (*CompletionResult, error) {
	db := p.conn(ctx)

	var section models.Section
	if err := db.First(&section, sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("section not found")
		}
		return nil, fmt.Errorf("load section %d: %w", sectionID, err)
	}

	existing, err := p.progressFor(db, studentID, sectionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CompletionResult{AlreadyCompleted: true, Progress: existing, NewBadges: []models.Badge{}}, nil
	}

	active, err := p.IsActive(ctx, &section)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, Forbidden("section is not available yet")
	}

	record, created, err := p.insertProgress(db, studentID, sectionID)
	if err != nil {
		return nil, err
	}
	if !created {
		return &CompletionResult{AlreadyCompleted: true, Progress: record, NewBadges: []models.Badge{}}, nil
	}

	badges, err := p.afterCompletion(ctx, studentID, &section)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{Progress: record, NewBadges: badges}, nil
}

// AutoCompleteQuiz completes the first section hosting the quiz, if it is open
// and not completed yet. It returns the course of that section, or nil when no
// section hosts the quiz.
func (p *ProgressTracker) AutoCompleteQuiz(ctx context.Context, studentID, quizID uint) (*uint, error) {
	return p.autoComplete(ctx, studentID, "quiz_id", quizID)
}

// AutoCompleteAssignment is AutoCompleteQuiz for assignment sections.
func (p *ProgressTracker) AutoCompleteAssignment(ctx context.Context, studentID, assignmentID uint) (*uint, error) {
	return p.autoComplete(ctx, studentID, "assignment_id", assignmentID)
}

func (p *ProgressTracker) autoComplete(ctx context.Context, studentID uint, column string, id uint) (*uint, error) {
	log := config.WithContext(ctx)
	db := p.conn(ctx)

	var section models.Section
	err := db.Where(column+" = ?", id).Order("id ASC").First(&section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section by %s: %w", column, err)
	}

	courseID, err := p.courseOf(db, &section)
	if err != nil {
		return nil, err
	}

	existing, err := p.progressFor(db, studentID, section.ID)
	if err != nil || existing != nil {
		return &courseID, err
	}

	active, err := p.IsActive(ctx, &section)
	if err != nil {
		return &courseID, err
	}
	if !active {
		log.WithFields(logrus.Fields{"section_id": section.ID, "student_id": studentID}).
			Debug("Section not active yet, skipping auto completion")
		return &courseID, nil
	}

	if _, _, err := p.insertProgress(db, studentID, section.ID); err != nil {
		return &courseID, err
	}
	if err := p.RecalculateForCourse(ctx, studentID, courseID); err != nil {
		return &courseID, err
	}
	return &courseID, nil
}

func (p *ProgressTracker) progressFor(db *gorm.DB, studentID, sectionID uint) (*models.SectionProgress, error) {
	var record models.SectionProgress
	err := db.Where("student_id = ? AND section_id = ?", studentID, sectionID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load section progress: %w", err)
	}
	return &record, nil
}

// insertProgress relies on the unique (student, section) index; losing a race
// to a concurrent request returns the row that won.
func (p *ProgressTracker) insertProgress(db *gorm.DB, studentID, sectionID uint) (*models.SectionProgress, bool, error) {
	record := models.SectionProgress{StudentID: studentID, SectionID: sectionID, CompletedAt: p.now()}
	if err := db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, lookupErr := p.progressFor(db, studentID, sectionID)
			return winner, false, lookupErr
		}
		return nil, false, fmt.Errorf("create section progress: %w", err)
	}
	return &record, true, nil
}

func (p *ProgressTracker) afterCompletion(ctx context.Context, studentID uint, section *models.Section) ([]models.Badge, error) {
	courseID, err := p.courseOf(p.conn(ctx), section)
	if err != nil {
		return nil, err
	}
	if err := p.RecalculateForCourse(ctx, studentID, courseID); err != nil {
		return nil, err
	}
	return p.badges.Evaluate(ctx, studentID, &courseID)
}

func (p *ProgressTracker) courseOf(db *gorm.DB, section *models.Section) (uint, error) {
	var lesson models.Lesson
	if err := db.Select("id", "course_id").First(&lesson, section.LessonID).Error; err != nil {
		return 0, fmt.Errorf("load lesson %d: %w", section.LessonID, err)
	}
	return lesson.CourseID, nil
}

// CompletedSections lists the ids of every section the student completed.
func (p *ProgressTracker) CompletedSections(ctx context.Context, studentID uint) ([]uint, error) {
	ids := []uint{}
	err := p.conn(ctx).Model(&models.SectionProgress{}).
		Where("student_id = ?", studentID).
		Order("section_id ASC").
		Pluck("section_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list completed sections: %w", err)
	}
	return ids, nil
}

// LessonProgress is derived live from SectionProgress.
func (p *ProgressTracker) LessonProgress(ctx context.Context, studentID, lessonID uint) (*LessonProgress, error) {
	var lesson models.Lesson
	if err := p.conn(ctx).First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("lesson not found")
		}
		return nil, fmt.Errorf("load lesson %d: %w", lessonID, err)
	}

	out, err := p.lessonsProgress(ctx, studentID, []models.Lesson{lesson})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// CourseProgress is completed lessons over total lessons, with a per-lesson breakdown.
func (p *ProgressTracker) CourseProgress(ctx context.Context, studentID, courseID uint) (*CourseProgress, error) {
	if err := p.conn(ctx).Select("id").First(&models.Course{}, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("course not found")
		}
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}

	var lessons []models.Lesson
	if err := p.conn(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}

	breakdown, err := p.lessonsProgress(ctx, studentID, lessons)
	if err != nil {
		return nil, err
	}

	result := &CourseProgress{CourseID: courseID, TotalLessons: len(lessons), Lessons: breakdown}
	for _, l := range breakdown {
		if l.IsComplete {
			result.CompletedLessons++
		}
	}
	result.Percentage = percentage(result.CompletedLessons, result.TotalLessons)
	return result, nil
}

func (p *ProgressTracker) lessonsProgress(ctx context.Context, studentID uint, lessons []models.Lesson) ([]LessonProgress, error) {
	out := make([]LessonProgress, len(lessons))
	if len(lessons) == 0 {
		return out, nil
	}

	lessonIDs := make([]uint, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}

	type row struct {
		LessonID  uint
		Total     int
		Completed int
	}
	var rows []row
	err := p.conn(ctx).Model(&models.Section{}).
		Select("sections.lesson_id AS lesson_id, COUNT(sections.id) AS total, COUNT(section_progresses.id) AS completed").
		Joins("LEFT JOIN section_progresses ON section_progresses.section_id = sections.id AND section_progresses.student_id = ?", studentID).
		Where("sections.lesson_id IN ?", lessonIDs).
		Group("sections.lesson_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate lesson progress: %w", err)
	}

	byLesson := make(map[uint]row, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}

	for i, l := range lessons {
		r := byLesson[l.ID]
		out[i] = LessonProgress{
			LessonID:          l.ID,
			Title:             l.Title,
			TotalSections:     r.Total,
			CompletedSections: r.Completed,
			Percentage:        percentage(r.Completed, r.Total),
			IsComplete:        r.Total > 0 && r.Completed == r.Total,
		}
	}
	return out, nil
}

// RecalculateEnrollment writes degree-wide progress onto the enrollment: completed
// lessons over all lessons of every course in the degree.
func (p *ProgressTracker) RecalculateEnrollment(ctx context.Context, studentID, degreeID uint) (*models.Enrollment, error) {
	db := p.conn(ctx)

	var enrollment models.Enrollment
	if err := db.Where("student_id = ? AND degree_id = ?", studentID, degreeID).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("enrollment not found")
		}
		return nil, fmt.Errorf("load enrollment: %w", err)
	}

	var lessons []models.Lesson
	if err := db.Joins("JOIN courses ON courses.id = lessons.course_id").
		Where("courses.degree_id = ?", degreeID).
		Order("lessons.id ASC").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("list degree lessons: %w", err)
	}

	breakdown, err := p.lessonsProgress(ctx, studentID, lessons)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, l := range breakdown {
		if l.IsComplete {
			completed++
		}
	}

	enrollment.Progress = percentage(completed, len(lessons))
	enrollment.IsCompleted = len(lessons) > 0 && completed == len(lessons)
	if err := db.Model(&enrollment).Updates(map[string]interface{}{
		"progress":     enrollment.Progress,
		"is_completed": enrollment.IsCompleted,
	}).Error; err != nil {
		return nil, fmt.Errorf("update enrollment progress: %w", err)
	}
	return &enrollment, nil
}

// RecalculateForCourse refreshes the enrollment covering the course, if the student has one.
func (p *ProgressTracker) RecalculateForCourse(ctx context.Context, studentID, courseID uint) error {
	var course models.Course
	if err := p.conn(ctx).Select("id", "degree_id").First(&course, courseID).Error; err != nil {
		return fmt.Errorf("load course %d: %w", courseID, err)
	}
	if course.DegreeID == nil {
		return nil
	}
	_, err := p.RecalculateEnrollment(ctx, studentID, *course.DegreeID)
	if KindOf(err) == KindNotFound {
		return nil
	}
	return err
}

// RecalculateAll refreshes every enrollment and returns how many were processed.
func (p *ProgressTracker) RecalculateAll(ctx context.Context) (int, error) {
	log := config.WithContext(ctx)
	processed := 0

	var batch []models.Enrollment
	res := p.conn(ctx).Order("id ASC").FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
		for _, e := range batch {
			if _, err := p.RecalculateEnrollment(ctx, e.StudentID, e.DegreeID); err != nil {
				log.WithError(err).WithField("enrollment_id", e.ID).Error("Failed to recalculate enrollment progress")
				continue
			}
			processed++
		}
		return nil
	})
	if res.Error != nil {
		return processed, fmt.Errorf("iterate enrollments: %w", res.Error)
	}
	return processed, nil
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
