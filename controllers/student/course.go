package controllers

import (
	"context"
	"lms/middleware"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

type courseLookup func(ctx context.Context, id uint) (uint, error)

// authorize resolves the course owning the resource in c.Locals(local) and
// checks that the caller may view it.
func authorize(c *fiber.Ctx, lookup courseLookup, local string) (services.Identity, uint, error) {
	id, _ := middleware.CurrentIdentity(c)
	resourceID := c.Locals(local).(uint)

	courseID, err := lookup(c.UserContext(), resourceID)
	if err != nil {
		return id, 0, err
	}
	if err := middleware.ServicesFrom(c).Access.RequireView(c.UserContext(), id, courseID); err != nil {
		return id, 0, err
	}
	return id, resourceID, nil
}

func GetMyCourses(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	courses, err := middleware.ServicesFrom(c).Access.EnrolledCourses(c.UserContext(), id.SubjectID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// GetCourseLessons expects RequireCourseAccess in front of it.
func GetCourseLessons(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	lessons, err := middleware.ServicesFrom(c).Content.Lessons(c.UserContext(), courseID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

func GetCourseProgress(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	courseID := c.Locals("courseID").(uint)

	progress, err := middleware.ServicesFrom(c).Progress.CourseProgress(c.UserContext(), id.SubjectID, courseID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course progress fetched successfully!", progress)
}

func GetLessonSections(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, lessonID, err := authorize(c, svc.Access.CourseOfLesson, "lessonId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	sections, err := svc.Content.LessonSections(c.UserContext(), id.SubjectID, lessonID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sections fetched successfully!", sections)
}

func GetLessonProgress(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, lessonID, err := authorize(c, svc.Access.CourseOfLesson, "lessonId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	progress, err := svc.Progress.LessonProgress(c.UserContext(), id.SubjectID, lessonID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson progress fetched successfully!", progress)
}

func CompleteSection(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, sectionID, err := authorize(c, svc.Access.CourseOfSection, "sectionId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	result, err := svc.Progress.CompleteSection(c.UserContext(), id.SubjectID, sectionID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	if result.AlreadyCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Section already completed!", result)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Section marked as complete!", result)
}

func GetCompletedSections(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	ids, err := middleware.ServicesFrom(c).Progress.CompletedSections(c.UserContext(), id.SubjectID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completed sections fetched successfully!", fiber.Map{
		"section_ids": ids,
	})
}

func GetDashboard(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	dashboard, err := middleware.ServicesFrom(c).Progress.Dashboard(c.UserContext(), id.SubjectID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", dashboard)
}

func GetMyBadges(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)

	badges, err := middleware.ServicesFrom(c).Badges.Badges(c.UserContext(), id.SubjectID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully!", badges)
}
