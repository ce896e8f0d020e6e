package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"contentapi/internal/models"
	"contentapi/internal/repositories"
	"contentapi/internal/validation"
)

// PostService handles business logic related to posts. Every mutation is
// scoped to the owning user.
type PostService struct {
	repo     repositories.Repository[models.Post]
	validate *validation.Validator
	log      *logrus.Logger
	events   Publisher
	now      func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(repo repositories.Repository[models.Post], validate *validation.Validator, log *logrus.Logger, events Publisher) *PostService {
	return &PostService{
		repo:     repo,
		validate: validate,
		log:      log,
		events:   events,
		now:      time.Now,
	}
}

// Create stores a new post owned by user.
func (s *PostService) Create(ctx context.Context, user *models.User, req models.CreatePostRequest) (*models.PostResponse, error) {
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "title": req.Title}).Debug("PostService.Create")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		UserID:    user.ID,
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}
	post.CreatedAt = now
	post.UpdatedAt = now

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	publish(s.log, s.events, Event{Event: EventPostCreated, ID: post.ID, UserID: post.UserID, At: now})

	resp := post.ToResponse()
	return &resp, nil
}

// mustExist loads a post by id. A non-zero userID additionally requires the
// post to be owned by that user.
func (s *PostService) mustExist(ctx context.Context, id, userID uint) (*models.Post, error) {
	q := repositories.Where(repositories.Eq("id", id))
	if userID != 0 {
		q = q.And(repositories.Eq("user_id", userID))
	}

	post, err := s.repo.FindOne(ctx, q)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return post, nil
}

// Get returns any post by id regardless of its owner.
func (s *PostService) Get(ctx context.Context, id uint) (*models.PostResponse, error) {
	post, err := s.mustExist(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	resp := post.ToResponse()
	return &resp, nil
}

// Update merges the provided fields into a post owned by user.
func (s *PostService) Update(ctx context.Context, user *models.User, req models.UpdatePostRequest) (*models.PostResponse, error) {
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "post_id": req.ID}).Debug("PostService.Update")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.mustExist(ctx, req.ID, user.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Published != nil {
		post.Published = req.Published
	}
	post.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, post, "title", "content", "published", "updated_at"); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post %d: %w", post.ID, err)
	}

	publish(s.log, s.events, Event{Event: EventPostUpdated, ID: post.ID, UserID: post.UserID, At: post.UpdatedAt})

	resp := post.ToResponse()
	return &resp, nil
}

// Remove deletes a post owned by user and returns it.
func (s *PostService) Remove(ctx context.Context, user *models.User, id uint) (*models.PostResponse, error) {
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "post_id": id}).Debug("PostService.Remove")
	post, err := s.mustExist(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to delete post %d: %w", id, err)
	}

	publish(s.log, s.events, Event{Event: EventPostDeleted, ID: post.ID, UserID: post.UserID, At: s.now()})

	resp := post.ToResponse()
	return &resp, nil
}

// Search pages through posts. The search term matches title or content,
// title and content filters must both match, and a non-zero UserID limits
// the result to that owner.
func (s *PostService) Search(ctx context.Context, req models.SearchPostRequest) ([]models.PostResponse, *models.Paging, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, nil, err
	}

	var filters []repositories.Filter
	if req.UserID != 0 {
		filters = append(filters, repositories.Eq("user_id", req.UserID))
	}
	if req.Search != "" {
		filters = append(filters, repositories.AnyContains(req.Search, "title", "content"))
	}
	if req.Title != "" {
		filters = append(filters, repositories.Contains("title", req.Title))
	}
	if req.Content != "" {
		filters = append(filters, repositories.Contains("content", req.Content))
	}

	posts, paging, err := searchPage(ctx, s.repo, repositories.Where(filters...), req.Page, req.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search posts: %w", err)
	}

	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].ToResponse())
	}
	return out, paging, nil
}
