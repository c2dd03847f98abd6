package studentRoutes

import (
	controllers "lms/controllers/student"
	"lms/middleware"
	"lms/models"
	"lms/utils"
	validators "lms/validators/studentValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupStudentRoutes sets up all student-facing routes
func SetupStudentRoutes(app fiber.Router, storage utils.FileStorage) {
	student := app.Group("/student", middleware.JWTMiddleware, middleware.RequireRole(models.RoleStudent))

	student.Get("/dashboard", controllers.GetDashboard)
	student.Get("/badges", controllers.GetMyBadges)

	// Courses and progress
	student.Get("/courses", controllers.GetMyCourses)
	student.Get("/courses/:courseId/lessons", middleware.RequireCourseAccess("courseId"), controllers.GetCourseLessons)
	student.Get("/courses/:courseId/progress", middleware.RequireCourseAccess("courseId"), controllers.GetCourseProgress)
	student.Get("/lessons/:lessonId/sections", validators.LessonID, controllers.GetLessonSections)
	student.Get("/lessons/:lessonId/progress", validators.LessonID, controllers.GetLessonProgress)

	// Section completion
	student.Post("/sections/:sectionId/complete", validators.SectionID, controllers.CompleteSection)
	student.Get("/sections/completed", controllers.GetCompletedSections)

	// Quizzes
	student.Get("/quizzes/:quizId", validators.QuizID, controllers.GetQuizDetails)
	student.Post("/quizzes/:quizId/start", validators.QuizID, controllers.StartQuiz)
	student.Post("/quizzes/:quizId/submit", validators.QuizID, validators.SubmitQuiz(), controllers.SubmitQuiz)
	student.Post("/quizzes/:quizId/auto-submit", validators.QuizID, validators.SubmitQuiz(), controllers.AutoSubmitQuiz)
	student.Get("/quizzes/:quizId/results", validators.QuizID, controllers.GetQuizResults)
	student.Get("/quizzes/:quizId/attempts", validators.QuizID, controllers.GetQuizAttempts)

	// Assignments
	student.Get("/assignments/:assignmentId", validators.AssignmentID, controllers.GetAssignment)
	student.Post("/assignments/:assignmentId/submit", validators.AssignmentID, validators.SubmitAssignment(), controllers.SubmitAssignment(storage))
	student.Get("/assignments/:assignmentId/submissions", validators.AssignmentID, controllers.GetMySubmissions)
	student.Delete("/submissions/:submissionId", validators.SubmissionID, controllers.DeleteSubmission(storage))
}
