package services

import (
	"context"
	"lms/database/dbtest"
	"lms/models"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	svc   *Services
	clock time.Time

	student  models.User
	lecturer models.User
	degree   models.Degree
	course   models.Course
	lesson   models.Lesson
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		db:    dbtest.New(t),
		clock: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(f.db, Options{
		Now:     func() time.Time { return f.clock },
		Shuffle: func([]models.Question) {},
	})

	inst := models.Institution{Name: "Northfield University"}
	f.create(&inst)
	f.degree = models.Degree{Name: "BSc Computing", InstitutionID: inst.ID}
	f.create(&f.degree)
	f.course = models.Course{Title: "Databases", InstitutionID: inst.ID, DegreeID: &f.degree.ID}
	f.create(&f.course)

	f.student = models.User{Name: "Sam", Email: "sam@example.com", Role: models.RoleStudent}
	f.create(&f.student)
	f.lecturer = models.User{Name: "Lee", Email: "lee@example.com", Role: models.RoleLecturer}
	f.create(&f.lecturer)

	f.create(&models.CourseLecturer{CourseID: f.course.ID, LecturerID: f.lecturer.ID})
	f.create(&models.Enrollment{StudentID: f.student.ID, DegreeID: f.degree.ID})

	f.lesson = models.Lesson{CourseID: f.course.ID, Title: "Normal forms"}
	f.create(&f.lesson)

	_, err := f.svc.Badges.SeedCatalog(f.ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) create(v interface{}) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(v).Error)
}

func (f *fixture) studentID() Identity {
	return Identity{SubjectID: f.student.ID, Role: models.RoleStudent}
}

func (f *fixture) lecturerID() Identity {
	return Identity{SubjectID: f.lecturer.ID, Role: models.RoleLecturer}
}

// quiz creates a quiz with the given questions. A question with options is multiple choice.
func (f *fixture) quiz(maxAttempts int, passing float64, questions ...models.Question) models.Quiz {
	f.t.Helper()
	quiz := models.Quiz{LecturerID: f.lecturer.ID, Title: "Quiz", MaxAttempts: maxAttempts, PassingScore: passing, ImmediateFeedback: true}
	f.create(&quiz)
	for _, q := range questions {
		q.QuizID = quiz.ID
		if q.QuestionType == "" {
			q.QuestionType = models.QuestionShortAnswer
			if len(q.Options) > 0 {
				q.QuestionType = models.QuestionMultipleChoice
			}
		}
		f.create(&q)
	}
	return quiz
}

func (f *fixture) section(content models.SectionContent, weekID *uint) models.Section {
	f.t.Helper()
	return f.sectionIn(f.lesson.ID, content, weekID)
}

func (f *fixture) sectionIn(lessonID uint, content models.SectionContent, weekID *uint) models.Section {
	f.t.Helper()
	s := models.Section{LessonID: lessonID, Title: "Section", CalendarWeekID: weekID}
	s.SetContent(content)
	f.create(&s)
	return s
}

func (f *fixture) week(start time.Time) models.CalendarWeek {
	f.t.Helper()
	cal := models.AcademicCalendar{Name: "Spring", StartDate: start, EndDate: start.AddDate(0, 3, 0)}
	f.create(&cal)
	w := models.CalendarWeek{CalendarID: cal.ID, WeekNumber: 1, StartDate: start, EndDate: start.AddDate(0, 0, 6)}
	f.create(&w)
	return w
}

func badgeNames(badges []models.Badge) []string {
	names := make([]string, len(badges))
	for i, b := range badges {
		names[i] = b.Name
	}
	return names
}

func mc(text, correct string, options ...string) models.Question {
	return models.Question{QuestionText: text, CorrectAnswer: correct, Options: options}
}

func short(text, correct string) models.Question {
	return models.Question{QuestionText: text, CorrectAnswer: correct}
}
