package controllers

import (
	"lms/middleware"
	"lms/services"
	validators "lms/validators/lecturerValidator"

	"github.com/gofiber/fiber/v2"
)

func GetAssignedCourses(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	courses, err := middleware.ServicesFrom(c).Access.AssignedCourses(c.UserContext(), id.SubjectID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func GetLessons(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	lessons, err := middleware.ServicesFrom(c).Content.Lessons(c.UserContext(), courseID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

func CreateLesson(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	courseID := c.Locals("courseId").(uint)
	req := c.Locals("validatedLesson").(*validators.LessonRequest)

	lesson, err := middleware.ServicesFrom(c).Content.CreateLesson(c.UserContext(), id, courseID, services.LessonInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// GetLessonSections shows the sections the way students see them.
func GetLessonSections(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	lessonID := c.Locals("lessonId").(uint)
	svc := middleware.ServicesFrom(c)

	courseID, err := svc.Access.CourseOfLesson(c.UserContext(), lessonID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	if err := svc.Access.RequireView(c.UserContext(), id, courseID); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	sections, err := svc.Content.LessonSections(c.UserContext(), id.SubjectID, lessonID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", sections)
}

func sectionInput(req *validators.SectionRequest) services.SectionInput {
	return services.SectionInput{
		Title:             req.Title,
		Content:           req.Content(),
		CalendarWeekID:    req.CalendarWeekID,
		ClearCalendarWeek: req.ClearCalendarWeek,
	}
}

func CreateSection(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	lessonID := c.Locals("lessonId").(uint)
	req := c.Locals("validatedSection").(*validators.SectionRequest)

	section, err := middleware.ServicesFrom(c).Content.CreateSection(c.UserContext(), id, lessonID, sectionInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section created successfully!", section)
}

func UpdateSection(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	sectionID := c.Locals("sectionId").(uint)
	req := c.Locals("validatedSection").(*validators.SectionRequest)

	section, err := middleware.ServicesFrom(c).Content.UpdateSection(c.UserContext(), id, sectionID, sectionInput(req))
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section updated successfully!", section)
}

func DeleteSection(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	sectionID := c.Locals("sectionId").(uint)

	if err := middleware.ServicesFrom(c).Content.DeleteSection(c.UserContext(), id, sectionID); err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Section deleted successfully!", nil)
}

func CreateAssignment(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	req := c.Locals("validatedAssignment").(*validators.AssignmentRequest)

	assignment, err := middleware.ServicesFrom(c).Content.CreateAssignment(c.UserContext(), id, services.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		FileURL:     req.FileURL,
	})
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

func GetAssignmentSubmissions(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	assignmentID := c.Locals("assignmentId").(uint)

	submissions, err := middleware.ServicesFrom(c).Assignments.AllSubmissions(c.UserContext(), id, assignmentID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}
