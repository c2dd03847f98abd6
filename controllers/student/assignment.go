package controllers

import (
	"fmt"
	"lms/config"
	"lms/middleware"
	"lms/utils"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
)

func GetAssignment(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	_, assignmentID, err := authorize(c, svc.Access.CourseOfAssignment, "assignmentId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	assignment, err := svc.Assignments.Assignment(c.UserContext(), assignmentID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment fetched successfully!", assignment)
}

// SubmitAssignment uploads the file first; the submission row is only
// written once storage has accepted it.
func SubmitAssignment(storage utils.FileStorage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc := middleware.ServicesFrom(c)
		id, assignmentID, err := authorize(c, svc.Access.CourseOfAssignment, "assignmentId")
		if err != nil {
			return middleware.ServiceErrorResponse(c, err)
		}
		file := c.Locals("submissionFile").(*multipart.FileHeader)
		ctx := c.UserContext()
		log := config.WithContext(ctx).WithField("assignment_id", assignmentID).WithField("student_id", id.SubjectID)

		url, err := storage.Save(ctx, file, fmt.Sprintf("submissions/%d", assignmentID))
		if err != nil {
			log.WithError(err).Error("Failed to store submission file")
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to upload file!", nil)
		}

		result, err := svc.Assignments.Submit(ctx, id.SubjectID, assignmentID, url, file.Filename)
		if err != nil {
			if delErr := storage.Delete(ctx, url); delErr != nil {
				log.WithError(delErr).Warn("Failed to remove orphaned upload")
			}
			return middleware.ServiceErrorResponse(c, err)
		}
		if result.ReplacedFileURL != "" && result.ReplacedFileURL != url {
			if err := storage.Delete(ctx, result.ReplacedFileURL); err != nil {
				log.WithError(err).Warn("Failed to remove replaced submission file")
			}
		}

		return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment submitted successfully!", result)
	}
}

func GetMySubmissions(c *fiber.Ctx) error {
	svc := middleware.ServicesFrom(c)
	id, assignmentID, err := authorize(c, svc.Access.CourseOfAssignment, "assignmentId")
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}

	submissions, err := svc.Assignments.Submissions(c.UserContext(), id.SubjectID, assignmentID)
	if err != nil {
		return middleware.ServiceErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", submissions)
}

func DeleteSubmission(storage utils.FileStorage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := middleware.CurrentIdentity(c)
		submissionID := c.Locals("submissionId").(uint)
		ctx := c.UserContext()

		url, err := middleware.ServicesFrom(c).Assignments.DeleteSubmission(ctx, id.SubjectID, submissionID)
		if err != nil {
			return middleware.ServiceErrorResponse(c, err)
		}
		if err := storage.Delete(ctx, url); err != nil {
			config.WithContext(ctx).WithError(err).WithField("submission_id", submissionID).Warn("Failed to remove submission file")
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission deleted successfully!", nil)
	}
}
