package lecturerRoutes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"lms/config"
	"lms/database/dbtest"
	"lms/middleware"
	"lms/models"
	"lms/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	config.AppConfig = &config.Config{JWTKey: "test-secret"}
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type env struct {
	t   *testing.T
	db  *gorm.DB
	app *fiber.App

	lecturer models.User
	other    models.User
	student  models.User
	course   models.Course
	foreign  models.Course
}

func setup(t *testing.T) *env {
	t.Helper()
	e := &env{t: t, db: dbtest.New(t)}
	svc := services.New(e.db, services.Options{})
	_, err := svc.Badges.SeedCatalog(context.Background())
	require.NoError(t, err)

	inst := models.Institution{Name: "Northfield"}
	e.create(&inst)
	e.course = models.Course{Title: "Databases", InstitutionID: inst.ID}
	e.create(&e.course)
	e.foreign = models.Course{Title: "Compilers", InstitutionID: inst.ID}
	e.create(&e.foreign)

	e.lecturer = models.User{Name: "Lee", Email: "lee@example.com", Role: models.RoleLecturer}
	e.create(&e.lecturer)
	e.other = models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleLecturer}
	e.create(&e.other)
	e.student = models.User{Name: "Sam", Email: "sam@example.com", Role: models.RoleStudent}
	e.create(&e.student)
	e.create(&models.CourseLecturer{CourseID: e.course.ID, LecturerID: e.lecturer.ID})

	e.app = fiber.New()
	e.app.Use(middleware.InjectServices(svc))
	SetupLecturerRoutes(e.app)
	return e
}

func (e *env) create(v interface{}) {
	e.t.Helper()
	require.NoError(e.t, e.db.Create(v).Error)
}

func (e *env) call(method, path, body string, user models.User) (int, response) {
	e.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	token, err := middleware.GenerateJWT(user.ID, user.Role, time.Hour)
	require.NoError(e.t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)

	var out response
	require.NoError(e.t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func fieldErrors(t *testing.T, out response) map[string]string {
	t.Helper()
	return decode[map[string]string](t, out.Data)
}

func TestStudentsAreRefused(t *testing.T) {
	e := setup(t)
	status, _ := e.call(http.MethodGet, "/lecturer/courses", "", e.student)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestLessons(t *testing.T) {
	e := setup(t)

	status, out := e.call(http.MethodPost, fmt.Sprintf("/lecturer/courses/%d/lessons", e.course.ID), `{"title":"  Normal forms "}`, e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	lesson := decode[models.Lesson](t, out.Data)
	assert.Equal(t, "Normal forms", lesson.Title)

	status, out = e.call(http.MethodGet, fmt.Sprintf("/lecturer/courses/%d/lessons", e.course.ID), "", e.lecturer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Lesson](t, out.Data), 1)

	status, out = e.call(http.MethodGet, "/lecturer/courses", "", e.lecturer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Course](t, out.Data), 1)

	t.Run("unassigned course", func(t *testing.T) {
		status, _ := e.call(http.MethodPost, fmt.Sprintf("/lecturer/courses/%d/lessons", e.foreign.ID), `{"title":"Parsing"}`, e.lecturer)
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	t.Run("title too short", func(t *testing.T) {
		status, out := e.call(http.MethodPost, fmt.Sprintf("/lecturer/courses/%d/lessons", e.course.ID), `{"title":"ab"}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, fieldErrors(t, out), "title")
	})
}

func TestQuizAuthoring(t *testing.T) {
	e := setup(t)

	status, out := e.call(http.MethodPost, "/lecturer/quizzes", `{"title":"Week 1 quiz"}`, e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	quiz := decode[models.Quiz](t, out.Data)
	assert.Equal(t, models.DefaultMaxAttempts, quiz.MaxAttempts)
	assert.Equal(t, models.DefaultPassingScore, quiz.PassingScore)
	assert.True(t, quiz.ImmediateFeedback)

	questions := fmt.Sprintf("/lecturer/quizzes/%d/questions", quiz.ID)

	t.Run("answer must be an option", func(t *testing.T) {
		status, out := e.call(http.MethodPost, questions,
			`{"question_text":"Pick","question_type":"multiple_choice","correct_answer":"C","options":["A","B"]}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "correct answer must be one of the options", fieldErrors(t, out)["correct_answer"])
	})

	t.Run("unknown type", func(t *testing.T) {
		status, out := e.call(http.MethodPost, questions,
			`{"question_text":"Pick","question_type":"essay","correct_answer":"C"}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, fieldErrors(t, out), "question_type")
	})

	status, out = e.call(http.MethodPost, questions,
		`{"question_text":"Pick","question_type":"multiple_choice","correct_answer":"b","options":["A","B"]}`, e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	question := decode[models.Question](t, out.Data)

	status, out = e.call(http.MethodPut, fmt.Sprintf("/lecturer/questions/%d", question.ID),
		`{"question_text":"Capital of France?","question_type":"short_answer","correct_answer":"Paris"}`, e.lecturer)
	require.Equal(t, fiber.StatusOK, status, out.Message)
	updated := decode[models.Question](t, out.Data)
	assert.Equal(t, models.QuestionShortAnswer, updated.QuestionType)
	assert.Empty(t, updated.Options)

	status, out = e.call(http.MethodPut, fmt.Sprintf("/lecturer/quizzes/%d", quiz.ID), `{"title":"Week 1 quiz","max_attempts":1,"passing_score":80}`, e.lecturer)
	require.Equal(t, fiber.StatusOK, status, out.Message)
	assert.Equal(t, 1, decode[models.Quiz](t, out.Data).MaxAttempts)

	status, out = e.call(http.MethodGet, fmt.Sprintf("/lecturer/quizzes/%d", quiz.ID), "", e.lecturer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(out.Data), `"correct_answer":"Paris"`)

	t.Run("invalid limits", func(t *testing.T) {
		status, out := e.call(http.MethodPut, fmt.Sprintf("/lecturer/quizzes/%d", quiz.ID), `{"title":"Week 1 quiz","max_attempts":0,"passing_score":120}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, fieldErrors(t, out), "passing_score")
	})

	t.Run("other lecturers cannot edit", func(t *testing.T) {
		status, _ := e.call(http.MethodGet, fmt.Sprintf("/lecturer/quizzes/%d", quiz.ID), "", e.other)
		assert.Equal(t, fiber.StatusForbidden, status)

		status, _ = e.call(http.MethodDelete, fmt.Sprintf("/lecturer/questions/%d", question.ID), "", e.other)
		assert.Equal(t, fiber.StatusForbidden, status)
	})

	status, _ = e.call(http.MethodDelete, fmt.Sprintf("/lecturer/questions/%d", question.ID), "", e.lecturer)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestSections(t *testing.T) {
	e := setup(t)
	lesson := models.Lesson{CourseID: e.course.ID, Title: "Normal forms"}
	e.create(&lesson)
	quiz := models.Quiz{LecturerID: e.lecturer.ID, Title: "NF quiz", MaxAttempts: 3, PassingScore: 50}
	e.create(&quiz)
	sections := fmt.Sprintf("/lecturer/lessons/%d/sections", lesson.ID)

	t.Run("content type is required", func(t *testing.T) {
		status, out := e.call(http.MethodPost, sections, `{"title":"Intro"}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, fieldErrors(t, out), "content_type")
	})

	t.Run("quiz section needs quiz_id", func(t *testing.T) {
		status, out := e.call(http.MethodPost, sections, `{"title":"Quiz","content_type":"quiz"}`, e.lecturer)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, fieldErrors(t, out), "quiz_id")
	})

	status, out := e.call(http.MethodPost, sections, `{"title":"Intro","content_type":"text","text_content":"Welcome"}`, e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	first := decode[models.Section](t, out.Data)
	assert.Equal(t, 1, first.Order)

	status, out = e.call(http.MethodPost, sections, fmt.Sprintf(`{"title":"Check","content_type":"quiz","quiz_id":%d}`, quiz.ID), e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	second := decode[models.Section](t, out.Data)
	assert.Equal(t, 2, second.Order)
	require.NotNil(t, second.QuizID)

	status, out = e.call(http.MethodPut, fmt.Sprintf("/lecturer/sections/%d", second.ID), `{"title":"Check","content_type":"text","text_content":"Quiz moved"}`, e.lecturer)
	require.Equal(t, fiber.StatusOK, status, out.Message)
	swapped := decode[models.Section](t, out.Data)
	assert.Nil(t, swapped.QuizID)
	assert.Equal(t, models.ContentText, swapped.ContentType)

	status, out = e.call(http.MethodGet, sections, "", e.lecturer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]services.SectionView](t, out.Data), 2)

	status, _ = e.call(http.MethodDelete, fmt.Sprintf("/lecturer/sections/%d", first.ID), "", e.lecturer)
	assert.Equal(t, fiber.StatusOK, status)

	t.Run("other lecturer cannot add sections", func(t *testing.T) {
		status, _ := e.call(http.MethodPost, sections, `{"title":"Intro","content_type":"text","text_content":"x"}`, e.other)
		assert.Equal(t, fiber.StatusForbidden, status)
	})
}

func TestAssignments(t *testing.T) {
	e := setup(t)

	status, out := e.call(http.MethodPost, "/lecturer/assignments", `{"title":"ER diagram","due_date":"2025-04-01T23:59:00Z"}`, e.lecturer)
	require.Equal(t, fiber.StatusCreated, status, out.Message)
	assignment := decode[models.Assignment](t, out.Data)
	require.NotNil(t, assignment.DueDate)

	status, out = e.call(http.MethodGet, fmt.Sprintf("/lecturer/assignments/%d/submissions", assignment.ID), "", e.lecturer)
	require.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, decode[[]models.AssignmentSubmission](t, out.Data))

	status, _ = e.call(http.MethodGet, fmt.Sprintf("/lecturer/assignments/%d/submissions", assignment.ID), "", e.other)
	assert.Equal(t, fiber.StatusForbidden, status)
}
