package lecturerRoutes

import (
	controllers "lms/controllers/lecturer"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/lecturerValidator"

	"github.com/gofiber/fiber/v2"
)

// SetupLecturerRoutes sets up content management routes. Admins may use them too.
func SetupLecturerRoutes(app fiber.Router) {
	lecturer := app.Group("/lecturer", middleware.JWTMiddleware, middleware.RequireRole(models.RoleLecturer, models.RoleAdmin))

	lecturer.Get("/courses", controllers.GetAssignedCourses)
	lecturer.Get("/courses/:courseId/lessons", middleware.RequireCourseAccess("courseId"), controllers.GetLessons)
	lecturer.Post("/courses/:courseId/lessons", validators.CourseID, validators.CreateLesson(), controllers.CreateLesson)

	// Sections
	lecturer.Get("/lessons/:lessonId/sections", validators.LessonID, controllers.GetLessonSections)
	lecturer.Post("/lessons/:lessonId/sections", validators.LessonID, validators.CreateSection(), controllers.CreateSection)
	lecturer.Put("/sections/:sectionId", validators.SectionID, validators.UpdateSection(), controllers.UpdateSection)
	lecturer.Delete("/sections/:sectionId", validators.SectionID, controllers.DeleteSection)

	// Quizzes and questions
	lecturer.Post("/quizzes", validators.Quiz(), controllers.CreateQuiz)
	lecturer.Get("/quizzes/:quizId", validators.QuizID, controllers.GetQuiz)
	lecturer.Put("/quizzes/:quizId", validators.QuizID, validators.Quiz(), controllers.UpdateQuiz)
	lecturer.Post("/quizzes/:quizId/questions", validators.QuizID, validators.Question(), controllers.AddQuestion)
	lecturer.Put("/questions/:questionId", validators.QuestionID, validators.Question(), controllers.UpdateQuestion)
	lecturer.Delete("/questions/:questionId", validators.QuestionID, controllers.DeleteQuestion)

	// Assignments
	lecturer.Post("/assignments", validators.CreateAssignment(), controllers.CreateAssignment)
	lecturer.Get("/assignments/:assignmentId/submissions", validators.AssignmentID, controllers.GetAssignmentSubmissions)
}
