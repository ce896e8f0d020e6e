package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to exactly one post.
type Comment struct {
	gorm.Model
	PostID  uint   `gorm:"not null;index"`
	Content string `gorm:"type:text;not null"`
}

type CreateCommentRequest struct {
	PostID  uint   `json:"post_id" validate:"gt=0"`
	Content string `json:"content" validate:"required,max=10000"`
}

type UpdateCommentRequest struct {
	ID      uint    `json:"id" validate:"gt=0"`
	Content *string `json:"content" validate:"omitempty,min=1,max=10000"`
}

// SearchCommentRequest lists the comments of one post, optionally filtered by content.
type SearchCommentRequest struct {
	PostID uint   `json:"post_id" validate:"gt=0"`
	Search string `json:"search" validate:"omitempty,max=100"`
	Page   int    `json:"page" validate:"min=1"`
	Size   int    `json:"size" validate:"min=1,max=100"`
}

type CommentResponse struct {
	ID        uint       `json:"id"`
	PostID    uint       `json:"post_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (c *Comment) ToResponse() CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: deletedAt(c.DeletedAt),
	}
}
