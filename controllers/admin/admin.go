package controllers

import (
	"lms/config"
	"lms/middleware"
	"lms/models"
	"lms/services"
	validators "lms/validators/adminValidator"

	"github.com/gofiber/fiber/v2"
)

func CreateUser(c *fiber.Ctx) error {
	req := c.Locals("validatedUser").(*validators.UserRequest)

	user, err := middleware.ServicesFrom(c).Access.CreateUser(c.UserContext(), req.Name, req.Email, req.Role, req.InstitutionID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully!", user)
}

func CreateInstitution(c *fiber.Ctx) error {
	req := c.Locals("validatedInstitution").(*validators.InstitutionRequest)

	institution, err := middleware.ServicesFrom(c).Access.CreateInstitution(c.UserContext(), req.Name)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Institution created successfully!", institution)
}

func CreateDegree(c *fiber.Ctx) error {
	req := c.Locals("validatedDegree").(*validators.DegreeRequest)

	degree, err := middleware.ServicesFrom(c).Access.CreateDegree(c.UserContext(), req.Name, req.InstitutionID, req.AcademicCalendarID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Degree created successfully!", degree)
}

func CreateCourse(c *fiber.Ctx) error {
	req := c.Locals("validatedCourse").(*validators.CourseRequest)

	course, err := middleware.ServicesFrom(c).Access.CreateCourse(c.UserContext(), models.Course{
		Title:         req.Title,
		Description:   req.Description,
		InstitutionID: req.InstitutionID,
		DegreeID:      req.DegreeID,
		ThumbnailURL:  req.ThumbnailURL,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func CreateCalendar(c *fiber.Ctx) error {
	req := c.Locals("validatedCalendar").(*validators.CalendarRequest)

	weeks := make([]services.WeekInput, len(req.Weeks))
	for i, w := range req.Weeks {
		weeks[i] = services.WeekInput{
			WeekNumber: w.WeekNumber,
			Label:      w.Label,
			StartDate:  w.StartDate,
			EndDate:    w.EndDate,
			IsBreak:    w.IsBreak,
		}
	}

	calendar, created, err := middleware.ServicesFrom(c).Access.CreateCalendar(c.UserContext(), req.Name, weeks)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Academic calendar created successfully!", fiber.Map{
		"calendar": calendar,
		"weeks":    created,
	})
}

func EnrollStudent(c *fiber.Ctx) error {
	req := c.Locals("validatedEnroll").(*validators.EnrollRequest)

	enrollment, err := middleware.ServicesFrom(c).Access.Enroll(c.UserContext(), req.StudentID, req.DegreeID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Student enrolled successfully!", enrollment)
}

func AssignLecturer(c *fiber.Ctx) error {
	req := c.Locals("validatedAssignLecturer").(*validators.AssignLecturerRequest)

	assignment, err := middleware.ServicesFrom(c).Access.AssignLecturer(c.UserContext(), req.LecturerID, req.CourseID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lecturer assigned successfully!", assignment)
}

func GrantPermission(c *fiber.Ctx) error {
	req := c.Locals("validatedPermission").(*validators.PermissionRequest)

	if err := middleware.ServicesFrom(c).Access.GrantPermission(c.UserContext(), req.UserID, req.Permission); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Permission granted successfully!", nil)
}

func SeedBadges(c *fiber.Ctx) error {
	created, err := middleware.ServicesFrom(c).Badges.SeedCatalog(c.UserContext())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badge catalog seeded successfully!", fiber.Map{
		"created": created,
	})
}

// RecalculateProgress runs the nightly enrollment recalculation on demand.
func RecalculateProgress(c *fiber.Ctx) error {
	n, err := middleware.ServicesFrom(c).Progress.RecalculateAll(c.UserContext())
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	config.WithContext(c.UserContext()).WithField("enrollments", n).Info("Enrollment progress recalculated on demand")
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress recalculated successfully!", fiber.Map{
		"enrollments": n,
	})
}
