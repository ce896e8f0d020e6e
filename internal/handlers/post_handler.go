package handlers

import (
	"github.com/gofiber/fiber/v2"

	"contentapi/internal/middleware"
	"contentapi/internal/models"
	"contentapi/internal/services"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// RegisterRoutes registers the post routes. Reads are public, writes require auth.
func (h *PostHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/users/current/posts", auth, h.HandleSearchOwn)

	posts := router.Group("/posts")
	posts.Get("/", h.HandleSearch)
	posts.Post("/", auth, h.HandleCreate)
	posts.Get("/:postId", h.HandleGet)
	posts.Put("/:postId", auth, h.HandleUpdate)
	posts.Delete("/:postId", auth, h.HandleRemove)
}

func (h *PostHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}

	resp, err := h.service.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *PostHandler) HandleGet(c *fiber.Ctx) error {
	id, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	resp, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

// HandleUpdate updates a post of the current account. The id in the path
// wins over any id in the body.
func (h *PostHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	req.ID = id

	resp, err := h.service.Update(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return ok(c, resp)
}

func (h *PostHandler) HandleRemove(c *fiber.Ctx) error {
	id, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	if _, err := h.service.Remove(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return ok(c, true)
}

// HandleSearch searches every post.
func (h *PostHandler) HandleSearch(c *fiber.Ctx) error {
	req, err := searchPostRequest(c)
	if err != nil {
		return err
	}
	return h.search(c, req)
}

// HandleSearchOwn searches the posts of the current account.
func (h *PostHandler) HandleSearchOwn(c *fiber.Ctx) error {
	req, err := searchPostRequest(c)
	if err != nil {
		return err
	}
	req.UserID = middleware.CurrentUser(c).ID
	return h.search(c, req)
}

func (h *PostHandler) search(c *fiber.Ctx, req models.SearchPostRequest) error {
	posts, paging, err := h.service.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return okPage(c, posts, paging)
}

func searchPostRequest(c *fiber.Ctx) (models.SearchPostRequest, error) {
	req := models.SearchPostRequest{
		Search:  c.Query("search"),
		Title:   c.Query("title"),
		Content: c.Query("content"),
	}
	var err error
	if req.Page, err = queryInt(c, "page", 1); err != nil {
		return req, err
	}
	if req.Size, err = queryInt(c, "size", 10); err != nil {
		return req, err
	}
	return req, nil
}
