package validators

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonRequest struct {
	Title string   `json:"title" validate:"required,min=3,nohtml"`
	Tags  []string `json:"tags" validate:"omitempty,dive,max=3"`
}

func TestValidateUsesJSONNames(t *testing.T) {
	errors := Validate(&lessonRequest{Title: "", Tags: []string{"toolong"}})

	assert.Equal(t, "title is required!", errors["title"])
	assert.Contains(t, errors, "tags[0]")
}

func TestValidateNoHTML(t *testing.T) {
	errors := Validate(&lessonRequest{Title: "<b>bold</b>"})
	assert.Equal(t, "title contains invalid characters!", errors["title"])

	assert.Nil(t, Validate(&lessonRequest{Title: "Week one"}))
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func TestBody(t *testing.T) {
	app := fiber.New()
	app.Post("/lessons", Body[lessonRequest]("validatedLesson", func(r *lessonRequest) map[string]string {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "forbidden" {
			return map[string]string{"title": "title is reserved!"}
		}
		return nil
	}), func(c *fiber.Ctx) error {
		req := c.Locals("validatedLesson").(*lessonRequest)
		return c.SendString(req.Title)
	})

	t.Run("valid body is trimmed and stored", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/lessons", strings.NewReader(`{"title":"  Intro  "}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Intro", string(raw))
	})

	t.Run("tag failure", func(t *testing.T) {
		status, env := call(t, app, "POST", "/lessons", `{"title":"ab"}`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.False(t, env.Status)
		assert.Contains(t, env.Data, "title")
	})

	t.Run("prepare error wins over tag message", func(t *testing.T) {
		status, env := call(t, app, "POST", "/lessons", `{"title":"forbidden"}`)
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Equal(t, "title is reserved!", env.Data["title"])
	})

	t.Run("malformed json", func(t *testing.T) {
		status, env := call(t, app, "POST", "/lessons", `{"title":`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "Invalid request body!", env.Message)
	})
}

func TestIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/quizzes/:quizId", IDParam("quizId"), func(c *fiber.Ctx) error {
		id := c.Locals("quizId").(uint)
		return c.JSON(fiber.Map{"id": id})
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/quizzes/12", fiber.StatusOK},
		{"/quizzes/0", fiber.StatusUnprocessableEntity},
		{"/quizzes/-3", fiber.StatusUnprocessableEntity},
		{"/quizzes/abc", fiber.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			status, _ := call(t, app, "GET", tc.path, "")
			assert.Equal(t, tc.status, status)
		})
	}
}
