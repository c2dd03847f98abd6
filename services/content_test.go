package services

import (
	"lms/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name   string
		in     QuestionInput
		fields []string
	}{
		{"valid multiple choice", QuestionInput{"2+2?", models.QuestionMultipleChoice, "4", []string{"3", "4"}}, nil},
		{"valid short answer", QuestionInput{"Capital?", models.QuestionShortAnswer, "Paris", nil}, nil},
		{"missing text", QuestionInput{" ", models.QuestionShortAnswer, "Paris", nil}, []string{"question_text"}},
		{"missing answer", QuestionInput{"Q", models.QuestionShortAnswer, "", nil}, []string{"correct_answer"}},
		{"one option", QuestionInput{"Q", models.QuestionMultipleChoice, "a", []string{"a", " "}}, []string{"options"}},
		{"answer not an option", QuestionInput{"Q", models.QuestionMultipleChoice, "c", []string{"a", "b"}}, []string{"correct_answer"}},
		{"answer matches after folding", QuestionInput{"Q", models.QuestionMultipleChoice, " A", []string{"a", "b"}}, nil},
		{"short answer with options", QuestionInput{"Q", models.QuestionShortAnswer, "a", []string{"a"}}, []string{"options"}},
		{"unknown type", QuestionInput{"Q", "essay", "a", nil}, []string{"question_type"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateQuestion(tt.in)
			if tt.fields == nil {
				assert.Nil(t, got)
				return
			}
			for _, field := range tt.fields {
				assert.Contains(t, got, field)
			}
			assert.Len(t, got, len(tt.fields))
		})
	}
}

func TestCreateSectionOrderAndContent(t *testing.T) {
	f := newFixture(t)
	lecturer := f.lecturerID()

	first, err := f.svc.Content.CreateSection(f.ctx, lecturer, f.lesson.ID, SectionInput{Title: "Intro", Content: models.TextContent{Text: "hello"}})
	require.NoError(t, err)
	second, err := f.svc.Content.CreateSection(f.ctx, lecturer, f.lesson.ID, SectionInput{Title: "Slides", Content: models.FileContent{URL: "https://cdn/x.pdf"}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)

	quiz, err := f.svc.Content.CreateQuiz(f.ctx, lecturer, QuizInput{Title: "Check"})
	require.NoError(t, err)

	updated, err := f.svc.Content.UpdateSection(f.ctx, lecturer, first.ID, SectionInput{Content: models.QuizContent{QuizID: quiz.ID}})
	require.NoError(t, err)
	assert.Equal(t, models.ContentQuiz, updated.ContentType)

	var stored models.Section
	require.NoError(t, f.db.First(&stored, first.ID).Error)
	assert.Nil(t, stored.TextContent)
	require.NotNil(t, stored.QuizID)
	assert.Equal(t, quiz.ID, *stored.QuizID)
	assert.Equal(t, "Intro", stored.Title)

	_, err = f.svc.Content.CreateSection(f.ctx, lecturer, f.lesson.ID, SectionInput{Title: "Empty"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestContentPermissions(t *testing.T) {
	f := newFixture(t)
	outsider := models.User{Email: "out@example.com", Role: models.RoleLecturer}
	f.create(&outsider)
	outsiderID := Identity{SubjectID: outsider.ID, Role: models.RoleLecturer}

	_, err := f.svc.Content.CreateLesson(f.ctx, outsiderID, f.course.ID, LessonInput{Title: "Nope"})
	assert.Equal(t, KindForbidden, KindOf(err))

	_, err = f.svc.Content.CreateLesson(f.ctx, f.studentID(), f.course.ID, LessonInput{Title: "Nope"})
	assert.Equal(t, KindForbidden, KindOf(err))

	quiz, err := f.svc.Content.CreateQuiz(f.ctx, f.lecturerID(), QuizInput{Title: "Mine"})
	require.NoError(t, err)
	_, err = f.svc.Content.AddQuestion(f.ctx, outsiderID, quiz.ID, QuestionInput{"Q", models.QuestionShortAnswer, "a", nil})
	assert.Equal(t, KindForbidden, KindOf(err))

	lesson, err := f.svc.Content.CreateLesson(f.ctx, Identity{SubjectID: 1, Role: models.RoleAdmin}, f.course.ID, LessonInput{Title: "By admin"})
	require.NoError(t, err)
	assert.Equal(t, f.course.ID, lesson.CourseID)
}

func TestQuizDefaultsAndLimits(t *testing.T) {
	f := newFixture(t)
	lecturer := f.lecturerID()

	quiz, err := f.svc.Content.CreateQuiz(f.ctx, lecturer, QuizInput{Title: "Defaults"})
	require.NoError(t, err)
	assert.Equal(t, 3, quiz.MaxAttempts)
	assert.Equal(t, 50.0, quiz.PassingScore)
	assert.True(t, quiz.ImmediateFeedback)

	zero := 0
	_, err = f.svc.Content.CreateQuiz(f.ctx, lecturer, QuizInput{Title: "Bad", MaxAttempts: &zero})
	assert.Equal(t, KindValidation, KindOf(err))

	tooHigh := 101.0
	_, err = f.svc.Content.UpdateQuiz(f.ctx, lecturer, quiz.ID, QuizInput{Title: "Bad", PassingScore: &tooHigh})
	assert.Equal(t, KindValidation, KindOf(err))

	free := 0.0
	updated, err := f.svc.Content.UpdateQuiz(f.ctx, lecturer, quiz.ID, QuizInput{Title: "Free pass", PassingScore: &free})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.PassingScore)
}

func TestQuestionLifecycle(t *testing.T) {
	f := newFixture(t)
	lecturer := f.lecturerID()
	quiz, err := f.svc.Content.CreateQuiz(f.ctx, lecturer, QuizInput{Title: "Q"})
	require.NoError(t, err)

	q, err := f.svc.Content.AddQuestion(f.ctx, lecturer, quiz.ID, QuestionInput{"Pick", models.QuestionMultipleChoice, "b", []string{" a", "b ", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, []string(q.Options))

	_, err = f.svc.Content.AddQuestion(f.ctx, lecturer, quiz.ID, QuestionInput{"Pick", models.QuestionMultipleChoice, "b", []string{"b"}})
	assert.Equal(t, KindValidation, KindOf(err))

	q, err = f.svc.Content.UpdateQuestion(f.ctx, lecturer, q.ID, QuestionInput{"Now short", models.QuestionShortAnswer, "yes", nil})
	require.NoError(t, err)
	assert.Empty(t, q.Options)

	_, questions, err := f.svc.Content.Quiz(f.ctx, lecturer, quiz.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Now short", questions[0].QuestionText)

	require.NoError(t, f.svc.Content.DeleteQuestion(f.ctx, lecturer, q.ID))
	err = f.svc.Content.DeleteQuestion(f.ctx, lecturer, q.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestDeleteSectionRemovesProgress(t *testing.T) {
	f := newFixture(t)
	s := f.section(models.TextContent{Text: "gone soon"}, nil)
	f.create(&models.SectionProgress{StudentID: f.student.ID, SectionID: s.ID, CompletedAt: f.clock})

	require.NoError(t, f.svc.Content.DeleteSection(f.ctx, f.lecturerID(), s.ID))

	var n int64
	f.db.Model(&models.SectionProgress{}).Where("section_id = ?", s.ID).Count(&n)
	assert.Zero(t, n)
	assert.Error(t, f.db.First(&models.Section{}, s.ID).Error)
}

func TestLessonSections(t *testing.T) {
	f := newFixture(t)
	future := f.week(f.clock.AddDate(0, 0, 14))
	current := f.week(f.clock.AddDate(0, 0, -1))

	assignment := models.Assignment{LecturerID: f.lecturer.ID, Title: "Lab"}
	f.create(&assignment)

	a := f.section(models.TextContent{Text: "now"}, &current.ID)
	f.section(models.TextContent{Text: "later"}, &future.ID)
	c := f.section(models.AssignmentContent{AssignmentID: assignment.ID}, nil)
	f.create(&models.SectionProgress{StudentID: f.student.ID, SectionID: a.ID, CompletedAt: f.clock})
	f.create(&models.AssignmentSubmission{AssignmentID: assignment.ID, StudentID: f.student.ID, FileURL: "u", SubmittedAt: f.clock})

	views, err := f.svc.Content.LessonSections(f.ctx, f.student.ID, f.lesson.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.True(t, views[0].IsActive)
	assert.True(t, views[0].IsCurrentWeek)
	assert.True(t, views[0].IsCompleted)

	assert.False(t, views[1].IsActive)
	assert.False(t, views[1].IsCurrentWeek)

	assert.Equal(t, c.ID, views[2].ID)
	assert.True(t, views[2].IsActive)
	assert.Len(t, views[2].Submissions, 1)
}

func TestUpdateSectionSchedule(t *testing.T) {
	f := newFixture(t)
	lecturer := f.lecturerID()
	week := f.week(f.clock.AddDate(0, 0, -1))
	section := f.section(models.TextContent{Text: "scheduled"}, &week.ID)

	updated, err := f.svc.Content.UpdateSection(f.ctx, lecturer, section.ID, SectionInput{Title: "Renamed"})
	require.NoError(t, err)
	require.NotNil(t, updated.CalendarWeekID, "omitted week keeps the schedule")

	_, err = f.svc.Content.UpdateSection(f.ctx, lecturer, section.ID, SectionInput{ClearCalendarWeek: true})
	require.NoError(t, err)

	var stored models.Section
	require.NoError(t, f.db.First(&stored, section.ID).Error)
	assert.Nil(t, stored.CalendarWeekID)
	assert.Equal(t, "Renamed", stored.Title)

	_, err = f.svc.Content.UpdateSection(f.ctx, lecturer, section.ID, SectionInput{CalendarWeekID: &week.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&stored, section.ID).Error)
	require.NotNil(t, stored.CalendarWeekID)
	assert.Equal(t, week.ID, *stored.CalendarWeekID)
}
