package middleware

import (
	"errors"
	"lms/config"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ServiceErrorResponse maps a service error onto the response envelope.
// Errors without a kind are logged and reported as 500.
func ServiceErrorResponse(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		config.WithContext(c.UserContext()).WithError(err).
			WithField("path", c.Path()).
			Error("Request failed")
		return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
	}

	switch svcErr.Kind {
	case services.KindNotFound:
		return JsonResponse(c, fiber.StatusNotFound, false, svcErr.Message, nil)
	case services.KindForbidden:
		return JsonResponse(c, fiber.StatusForbidden, false, svcErr.Message, nil)
	case services.KindValidation:
		return ValidationErrorResponse(c, svcErr.Fields)
	case services.KindConflict:
		return JsonResponse(c, fiber.StatusConflict, false, svcErr.Message, nil)
	}
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
}
