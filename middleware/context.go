package middleware

import (
	"context"
	"lms/config"
	"lms/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// InjectServices makes svc available to handlers through ServicesFrom.
func InjectServices(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("services", svc)
		return c.Next()
	}
}

// ServicesFrom returns the services injected for this request.
func ServicesFrom(c *fiber.Ctx) *services.Services {
	svc, _ := c.Locals("services").(*services.Services)
	return svc
}

// RequestID assigns every request an id and carries it into the user context
// so service logs can be correlated with the access log.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator: uuid.NewString,
	})
}

// RequestContext copies the request id into c.UserContext().
func RequestContext(c *fiber.Ctx) error {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		c.SetUserContext(context.WithValue(c.UserContext(), config.RequestIDKey, id))
	}
	return c.Next()
}
