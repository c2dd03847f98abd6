package adminRoutes

import (
	controllers "lms/controllers/admin"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/adminValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app fiber.Router) {
	admin := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	catalog := middleware.CheckPermissionMiddleware(models.PermissionManageCatalog)
	admin.Post("/users", catalog, validators.CreateUser(), controllers.CreateUser)
	admin.Post("/institutions", catalog, validators.CreateInstitution(), controllers.CreateInstitution)
	admin.Post("/degrees", catalog, validators.CreateDegree(), controllers.CreateDegree)
	admin.Post("/courses", catalog, validators.CreateCourse(), controllers.CreateCourse)
	admin.Post("/calendars", catalog, validators.CreateCalendar(), controllers.CreateCalendar)

	enrollments := middleware.CheckPermissionMiddleware(models.PermissionManageEnrollments)
	admin.Post("/enrollments", enrollments, validators.Enroll(), controllers.EnrollStudent)
	admin.Post("/course-lecturers", enrollments, validators.AssignLecturer(), controllers.AssignLecturer)
	admin.Post("/progress/recalculate", enrollments, controllers.RecalculateProgress)

	admin.Post("/badges/seed", middleware.CheckPermissionMiddleware(models.PermissionManageBadges), controllers.SeedBadges)
	admin.Post("/permissions", middleware.CheckPermissionMiddleware(models.PermissionManagePermissions), validators.GrantPermission(), controllers.GrantPermission)
}
