package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"contentapi/internal/models"
	"contentapi/internal/services"
	"contentapi/internal/validation"
)

var errInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrorHandler maps errors returned by handlers to a status code and an
// ErrorResponse body.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
		}
		return c.Status(status).JSON(models.ErrorResponse{Errors: body})
	}
}

func classify(err error) (int, any) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, verr.Fields
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrPostNotFound), errors.Is(err, services.ErrCommentNotFound):
		return fiber.StatusNotFound, err.Error()
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ferr.Message
	}
	return fiber.StatusInternalServerError, "internal server error"
}

func ok[T any](c *fiber.Ctx, data T) error {
	return c.JSON(models.WebResponse[T]{Data: data})
}

func okPage[T any](c *fiber.Ctx, data []T, paging *models.Paging) error {
	return c.JSON(models.WebResponse[[]T]{Data: data, Paging: paging})
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewError(key, "must be a number")
	}
	return n, nil
}

// queryID reads an optional identifier from the query string. Absent yields 0.
func queryID(c *fiber.Ctx, key string) (uint, error) {
	n, err := queryInt(c, key, 0)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, validation.NewError(key, "must be greater than 0")
	}
	return uint(n), nil
}

// pathID reads a positive identifier from the route parameters.
func pathID(c *fiber.Ctx, key string) (uint, error) {
	n, err := c.ParamsInt(key)
	if err != nil {
		return 0, validation.NewError(key, "must be a number")
	}
	if n <= 0 {
		return 0, validation.NewError(key, "must be greater than 0")
	}
	return uint(n), nil
}
