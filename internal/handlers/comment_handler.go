package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contentapi/internal/models"
	"contentapi/internal/services"
)

// CommentHandler handles HTTP requests for comments. None of its routes
// require authentication.
type CommentHandler struct {
	service *services.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRoutes registers the comment routes with the Fiber app.
func (h *CommentHandler) RegisterRoutes(router fiber.Router) {
	comments := router.Group("/comments")
	comments.Get("/", h.HandleSearch)
	comments.Post("/", h.HandleCreate)
	comments.Get("/:commentId", h.HandleGet)
	comments.Put("/:commentId", h.HandleUpdate)
	comments.Delete("/:commentId", h.HandleRemove)
}

func (h *CommentHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}

	resp, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *CommentHandler) HandleGet(c *fiber.Ctx) error {
	id, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *CommentHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	req.ID = id

	resp, err := h.service.Update(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *CommentHandler) HandleRemove(c *fiber.Ctx) error {
	id, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	if _, err := h.service.Remove(c.UserContext(), id); err != nil {
		return err
	}
	return ok(c, true)
}

// HandleSearch lists the comments of the post given by the post_id query parameter.
func (h *CommentHandler) HandleSearch(c *fiber.Ctx) error {
	req := models.SearchCommentRequest{Search: c.Query("search")}
	var err error
	if req.PostID, err = queryID(c, "post_id"); err != nil {
		return err
	}
	if req.Page, err = queryInt(c, "page", 1); err != nil {
		return err
	}
	if req.Size, err = queryInt(c, "size", 10); err != nil {
		return err
	}

	comments, paging, err := h.service.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return okPage(c, comments, paging)
}
