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

// CommentService handles business logic related to comments. Comments carry
// no owner, so any caller may change them given their id.
type CommentService struct {
	repo     repositories.Repository[models.Comment]
	postRepo repositories.Repository[models.Post]
	validate *validation.Validator
	log      *logrus.Logger
	events   Publisher
	now      func() time.Time
}

// NewCommentService creates a new CommentService.
func NewCommentService(repo repositories.Repository[models.Comment], postRepo repositories.Repository[models.Post], validate *validation.Validator, log *logrus.Logger, events Publisher) *CommentService {
	return &CommentService{
		repo:     repo,
		postRepo: postRepo,
		validate: validate,
		log:      log,
		events:   events,
		now:      time.Now,
	}
}

// Create attaches a new comment to an existing post.
func (s *CommentService) Create(ctx context.Context, req models.CreateCommentRequest) (*models.CommentResponse, error) {
	s.log.WithField("post_id", req.PostID).Debug("CommentService.Create")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.postRepo.FindOne(ctx, repositories.Where(repositories.Eq("id", req.PostID))); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post %d: %w", req.PostID, err)
	}

	now := s.now()
	comment := &models.Comment{
		PostID:  req.PostID,
		Content: req.Content,
	}
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	publish(s.log, s.events, Event{Event: EventCommentCreated, ID: comment.ID, PostID: comment.PostID, At: now})

	resp := comment.ToResponse()
	return &resp, nil
}

func (s *CommentService) mustExist(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.repo.FindOne(ctx, repositories.Where(repositories.Eq("id", id)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return comment, nil
}

// Get returns a comment by id.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.CommentResponse, error) {
	comment, err := s.mustExist(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := comment.ToResponse()
	return &resp, nil
}

// Update replaces the content of a comment when provided.
func (s *CommentService) Update(ctx context.Context, req models.UpdateCommentRequest) (*models.CommentResponse, error) {
	s.log.WithField("comment_id", req.ID).Debug("CommentService.Update")
	if err := s.validate.Validate(req); err != nil {
		return nil, err
	}

	comment, err := s.mustExist(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		comment.Content = *req.Content
	}
	comment.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, comment, "content", "updated_at"); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to update comment %d: %w", comment.ID, err)
	}

	publish(s.log, s.events, Event{Event: EventCommentUpdated, ID: comment.ID, PostID: comment.PostID, At: comment.UpdatedAt})

	resp := comment.ToResponse()
	return &resp, nil
}

// Remove deletes a comment and returns it.
func (s *CommentService) Remove(ctx context.Context, id uint) (*models.CommentResponse, error) {
	s.log.WithField("comment_id", id).Debug("CommentService.Remove")
	comment, err := s.mustExist(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to delete comment %d: %w", id, err)
	}

	publish(s.log, s.events, Event{Event: EventCommentDeleted, ID: comment.ID, PostID: comment.PostID, At: s.now()})

	resp := comment.ToResponse()
	return &resp, nil
}

// Search pages through the comments of one post.
func (s *CommentService) Search(ctx context.Context, req models.SearchCommentRequest) ([]models.CommentResponse, *models.Paging, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, nil, err
	}

	q := repositories.Where(repositories.Eq("post_id", req.PostID))
	if req.Search != "" {
		q = q.And(repositories.AnyContains(req.Search, "content"))
	}

	comments, paging, err := searchPage(ctx, s.repo, q, req.Page, req.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search comments: %w", err)
	}

	out := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, comments[i].ToResponse())
	}
	return out, paging, nil
}
