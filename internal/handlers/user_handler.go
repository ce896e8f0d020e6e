package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contentapi/internal/middleware"
	"contentapi/internal/models"
	"contentapi/internal/services"
)

// UserHandler handles HTTP requests for accounts and their session.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// RegisterRoutes registers the account routes. auth guards the routes acting
// on the current account.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	users := router.Group("/users")
	users.Post("/", h.HandleRegister)
	users.Post("/login", h.HandleLogin)
	users.Get("/current", auth, h.HandleCurrent)
	users.Patch("/current", auth, h.HandleUpdate)
	users.Delete("/current", auth, h.HandleLogout)
}

// HandleRegister handles new account registration.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}

	resp, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// HandleLogin exchanges credentials for a session token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}

	resp, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *UserHandler) HandleCurrent(c *fiber.Ctx) error {
	return ok(c, h.authService.Current(middleware.CurrentUser(c)))
}

// HandleUpdate applies a partial update to the current account.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}

	resp, err := h.authService.Update(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// HandleLogout clears the session token of the current account.
func (h *UserHandler) HandleLogout(c *fiber.Ctx) error {
	if _, err := h.authService.Logout(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	return ok(c, true)
}
