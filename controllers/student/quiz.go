package controllers

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func GetQuizDetails(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, quizID, err := authorize(c, svc.Access.CourseOfQuiz, "quizId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	view, err := svc.Quizzes.Details(c.UserContext(), id.SubjectID, quizID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz details fetched successfully!", view)
}

func StartQuiz(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, quizID, err := authorize(c, svc.Access.CourseOfQuiz, "quizId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	view, err := svc.Quizzes.Start(c.UserContext(), id.SubjectID, quizID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	if view.AttemptsLeft == 0 {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "No attempts left for this quiz!", view)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz ready to start!", view)
}

func SubmitQuiz(c *fiber.Ctx) error {
	return submitQuiz(c, false)
}

// AutoSubmitQuiz is called by the client when the time limit runs out.
func AutoSubmitQuiz(c *fiber.Ctx) error {
	return submitQuiz(c, true)
}

func submitQuiz(c *fiber.Ctx, auto bool) error {
	svc := middleware.ServicesFrom(c)
	id, quizID, err := authorize(c, svc.Access.CourseOfQuiz, "quizId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	answers := c.Locals("validatedAnswers").(map[string]string)

	submit := svc.Quizzes.Submit
	if auto {
		submit = svc.Quizzes.AutoSubmit
	}
	result, err := submit(c.UserContext(), id.SubjectID, quizID, answers)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz submitted successfully!", result)
}

func GetQuizResults(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, quizID, err := authorize(c, svc.Access.CourseOfQuiz, "quizId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	result, err := svc.Quizzes.Results(c.UserContext(), id.SubjectID, quizID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz results fetched successfully!", result)
}

func GetQuizAttempts(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, quizID, err := authorize(c, svc.Access.CourseOfQuiz, "quizId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	attempts, err := svc.Quizzes.Attempts(c.UserContext(), id.SubjectID, quizID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempts fetched successfully!", attempts)
}
