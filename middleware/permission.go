package middleware

import (
	"lms/config"

	"github.com/gofiber/fiber/v2"
)

// RequireRole allows the request through only for the listed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		for _, role := range roles {
			if id.Role == role {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}

// CheckPermissionMiddleware returns a middleware that checks if the user has the required permission
func CheckPermissionMiddleware(requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		granted, err := ServicesFrom(c).Access.HasPermission(c.UserContext(), id.SubjectID, requiredPermission)
		if err != nil {
			config.WithContext(c.UserContext()).WithError(err).Error("Permission check failed")
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}
		if !granted {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		return c.Next()
	}
}

// RequireCourseAccess gates course-scoped routes. The course id comes from the
// route parameter named param.
func RequireCourseAccess(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}
		courseID, err := c.ParamsInt(param)
		if err != nil || courseID <= 0 {
			return JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course ID!", nil)
		}

		if err := ServicesFrom(c).Access.RequireView(c.UserContext(), id, uint(courseID)); err != nil {
			return ServiceErrorResponse(c, err)
		}
		c.Locals("courseID", uint(courseID))
		return c.Next()
	}
}
