package studentValidator

import (
	"lms/middleware"
	"lms/validators"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxSubmissionSize = 20 << 20

var allowedSubmissionExt = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".zip": true,
	".txt": true, ".ppt": true, ".pptx": true, ".png": true, ".jpg": true, ".jpeg": true,
}

type SubmitQuizRequest struct {
	// Answers maps question ids (or the legacy mcq-<id> / short-<id> keys) to answers.
	Answers map[string]string `json:"answers"`
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitQuizRequest)
		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}
		if reqData.Answers == nil {
			reqData.Answers = map[string]string{}
		}

		errors := make(map[string]string)
		for key, answer := range reqData.Answers {
			if strings.TrimSpace(key) == "" {
				errors["answers"] = "Answer keys must not be empty!"
			}
			if len(answer) > 5000 {
				errors["answers."+key] = "Answer must not exceed 5000 characters!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAnswers", reqData.Answers)
		return c.Next()
	}
}

// SubmitAssignment checks the multipart "file" field and stores the header
// in c.Locals("submissionFile").
func SubmitAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := c.FormFile("file")
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"file": "file is required!"})
		}

		errors := make(map[string]string)
		if file.Size == 0 {
			errors["file"] = "file must not be empty!"
		} else if file.Size > maxSubmissionSize {
			errors["file"] = "file must not exceed 20MB!"
		}
		if !allowedSubmissionExt[strings.ToLower(filepath.Ext(file.Filename))] {
			errors["file"] = "file type is not allowed!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("submissionFile", file)
		return c.Next()
	}
}

var (
	QuizID       = validators.IDParam("quizId")
	SectionID    = validators.IDParam("sectionId")
	LessonID     = validators.IDParam("lessonId")
	AssignmentID = validators.IDParam("assignmentId")
	SubmissionID = validators.IDParam("submissionId")
)
