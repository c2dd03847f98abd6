package controllers

import (
	"lms/middleware"
	"lms/services"
	validators "lms/validators/lecturerValidator"

	"github.com/gofiber/fiber/v2"
)

func quizInput(req *validators.QuizRequest) services.QuizInput {
	return services.QuizInput{
		Title:              req.Title,
		Description:        req.Description,
		MaxAttempts:        req.MaxAttempts,
		PassingScore:       req.PassingScore,
		TimeLimit:          req.TimeLimit,
		Deadline:           req.Deadline,
		RandomizeQuestions: req.RandomizeQuestions,
		ImmediateFeedback:  req.ImmediateFeedback,
	}
}

func questionInput(req *validators.QuestionRequest) services.QuestionInput {
	return services.QuestionInput{
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		CorrectAnswer: req.CorrectAnswer,
		Options:       req.Options,
	}
}

func CreateQuiz(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	req := c.Locals("validatedQuiz").(*validators.QuizRequest)

	quiz, err := middleware.ServicesFrom(c).Content.CreateQuiz(c.UserContext(), id, quizInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func GetQuiz(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	quizID := c.Locals("quizId").(uint)

	quiz, questions, err := middleware.ServicesFrom(c).Content.Quiz(c.UserContext(), id, quizID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":      quiz,
		"questions": questions,
	})
}

func UpdateQuiz(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	quizID := c.Locals("quizId").(uint)
	req := c.Locals("validatedQuiz").(*validators.QuizRequest)

	quiz, err := middleware.ServicesFrom(c).Content.UpdateQuiz(c.UserContext(), id, quizID, quizInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func AddQuestion(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	quizID := c.Locals("quizId").(uint)
	req := c.Locals("validatedQuestion").(*validators.QuestionRequest)

	question, err := middleware.ServicesFrom(c).Content.AddQuestion(c.UserContext(), id, quizID, questionInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully!", question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	questionID := c.Locals("questionId").(uint)
	req := c.Locals("validatedQuestion").(*validators.QuestionRequest)

	question, err := middleware.ServicesFrom(c).Content.UpdateQuestion(c.UserContext(), id, questionID, questionInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	questionID := c.Locals("questionId").(uint)

	if err := middleware.ServicesFrom(c).Content.DeleteQuestion(c.UserContext(), id, questionID); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}
