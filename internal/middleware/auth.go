package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"contentapi/internal/models"
	"contentapi/internal/services"
)

const userKey = "user"

// TokenResolver maps a session token to the account holding it.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired is a Fiber middleware that resolves the bearer token of the
// request and stores the acting account in the context.
func AuthRequired(resolver TokenResolver, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return unauthorized(c, "authorization header format must be 'Bearer <token>'")
		}

		user, err := resolver.ResolveToken(c.UserContext(), parts[1])
		if err != nil {
			if errors.Is(err, services.ErrInvalidToken) {
				log.WithField("path", c.Path()).Debug("rejected bearer token")
				return unauthorized(c, err.Error())
			}
			log.WithError(err).Error("failed to resolve bearer token")
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Errors: "internal server error"})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the account stored by AuthRequired, or nil on routes
// that are not protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Errors: msg})
}
