package services

import (
	"lms/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionActivityRule(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	week := &models.CalendarWeek{StartDate: start, EndDate: start.AddDate(0, 0, 6)}

	tests := []struct {
		name        string
		week        *models.CalendarWeek
		at          time.Time
		active      bool
		currentWeek bool
	}{
		{"unscheduled", nil, start, true, false},
		{"day before start", week, start.Add(-time.Minute), false, false},
		{"start day morning", week, start.Add(time.Minute), true, true},
		{"last day late", week, start.AddDate(0, 0, 6).Add(23 * time.Hour), true, true},
		{"after week stays active", week, start.AddDate(0, 1, 0), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, sectionActive(tt.week, tt.at))
			assert.Equal(t, tt.currentWeek, sectionCurrentWeek(tt.week, tt.at))
		})
	}
}

func TestCompleteSectionIdempotent(t *testing.T) {
	f := newFixture(t)
	s1 := f.section(models.TextContent{Text: "one"}, nil)
	f.section(models.TextContent{Text: "two"}, nil)

	first, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, s1.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyCompleted)
	assert.Equal(t, []string{BadgeSectionStarter}, badgeNames(first.NewBadges))

	again, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, s1.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Empty(t, again.NewBadges)
	assert.Equal(t, first.Progress.ID, again.Progress.ID)

	var rows int64
	f.db.Model(&models.SectionProgress{}).Where("student_id = ?", f.student.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestSectionBadgesAtFirstAndFifth(t *testing.T) {
	f := newFixture(t)
	var sections []models.Section
	for i := 0; i < 6; i++ {
		sections = append(sections, f.section(models.TextContent{Text: "s"}, nil))
	}

	for i := 0; i < 5; i++ {
		res, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, sections[i].ID)
		require.NoError(t, err)
		switch i {
		case 0:
			assert.Equal(t, []string{BadgeSectionStarter}, badgeNames(res.NewBadges))
		case 4:
			assert.Equal(t, []string{BadgeSectionExplorer}, badgeNames(res.NewBadges))
		default:
			assert.Empty(t, res.NewBadges)
		}
	}

	res, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, sections[4].ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Empty(t, res.NewBadges)
}

func TestCompleteSectionGating(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, 12345)
	assert.Equal(t, KindNotFound, KindOf(err))

	future := f.week(f.clock.AddDate(0, 0, 7))
	locked := f.section(models.TextContent{Text: "later"}, &future.ID)

	_, err = f.svc.Progress.CompleteSection(f.ctx, f.student.ID, locked.ID)
	assert.Equal(t, KindForbidden, KindOf(err))

	f.clock = f.clock.AddDate(0, 0, 7)
	res, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, locked.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
}

func TestAlreadyCompletedBeatsInactive(t *testing.T) {
	f := newFixture(t)
	future := f.week(f.clock.AddDate(0, 0, 7))
	locked := f.section(models.TextContent{Text: "later"}, &future.ID)
	f.create(&models.SectionProgress{StudentID: f.student.ID, SectionID: locked.ID, CompletedAt: f.clock})

	res, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, locked.ID)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
}

func TestAutoCompleteSkipsInactiveSection(t *testing.T) {
	f := newFixture(t)
	quiz := f.quiz(3, 50)
	future := f.week(f.clock.AddDate(0, 0, 3))
	f.section(models.QuizContent{QuizID: quiz.ID}, &future.ID)

	courseID, err := f.svc.Progress.AutoCompleteQuiz(f.ctx, f.student.ID, quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, courseID)
	assert.Equal(t, f.course.ID, *courseID)

	ids, err := f.svc.Progress.CompletedSections(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAutoCompleteUnlinkedQuiz(t *testing.T) {
	f := newFixture(t)
	quiz := f.quiz(3, 50)

	courseID, err := f.svc.Progress.AutoCompleteQuiz(f.ctx, f.student.ID, quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, courseID)
}

func TestLessonAndCourseProgress(t *testing.T) {
	f := newFixture(t)
	s1 := f.section(models.TextContent{Text: "a"}, nil)
	s2 := f.section(models.TextContent{Text: "b"}, nil)

	empty := models.Lesson{CourseID: f.course.ID, Title: "Empty"}
	f.create(&empty)

	lp, err := f.svc.Progress.LessonProgress(f.ctx, f.student.ID, empty.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lp.Percentage)
	assert.False(t, lp.IsComplete, "a lesson without sections is never complete")

	_, err = f.svc.Progress.CompleteSection(f.ctx, f.student.ID, s1.ID)
	require.NoError(t, err)

	lp, err = f.svc.Progress.LessonProgress(f.ctx, f.student.ID, f.lesson.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, lp.Percentage, 0.0001)
	assert.False(t, lp.IsComplete)

	_, err = f.svc.Progress.CompleteSection(f.ctx, f.student.ID, s2.ID)
	require.NoError(t, err)

	cp, err := f.svc.Progress.CourseProgress(f.ctx, f.student.ID, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cp.TotalLessons)
	assert.Equal(t, 1, cp.CompletedLessons)
	assert.InDelta(t, 50.0, cp.Percentage, 0.0001)
	require.Len(t, cp.Lessons, 2)
	assert.True(t, cp.Lessons[0].IsComplete)

	var enrollment models.Enrollment
	require.NoError(t, f.db.Where("student_id = ?", f.student.ID).First(&enrollment).Error)
	assert.InDelta(t, 50.0, enrollment.Progress, 0.0001)
	assert.False(t, enrollment.IsCompleted)

	_, err = f.svc.Progress.LessonProgress(f.ctx, f.student.ID, 999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	s := f.section(models.TextContent{Text: "only"}, nil)
	// written behind the tracker's back
	f.create(&models.SectionProgress{StudentID: f.student.ID, SectionID: s.ID, CompletedAt: f.clock})

	n, err := f.svc.Progress.RecalculateAll(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var enrollment models.Enrollment
	require.NoError(t, f.db.Where("student_id = ?", f.student.ID).First(&enrollment).Error)
	assert.InDelta(t, 100.0, enrollment.Progress, 0.0001)
	assert.True(t, enrollment.IsCompleted)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	s := f.section(models.TextContent{Text: "x"}, nil)
	f.section(models.TextContent{Text: "y"}, nil)
	_, err := f.svc.Progress.CompleteSection(f.ctx, f.student.ID, s.ID)
	require.NoError(t, err)

	d, err := f.svc.Progress.Dashboard(f.ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.EnrolledCourses)
	assert.Equal(t, 1, d.SectionsCompleted)
	assert.Equal(t, 1, d.Badges)
}
