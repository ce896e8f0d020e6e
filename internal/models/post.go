package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is an article owned by a single user.
type Post struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index"`
	Title     string `gorm:"type:varchar(100);not null"`
	Content   string `gorm:"type:text;not null"`
	Published *bool
}

// CreatePostRequest is the schema for creating a post.
type CreatePostRequest struct {
	Title     string `json:"title" validate:"required,max=100"`
	Content   string `json:"content" validate:"required,max=10000"`
	Published *bool  `json:"published"`
}

// UpdatePostRequest carries the target id plus only the fields to change.
type UpdatePostRequest struct {
	ID        uint    `json:"id" validate:"gt=0"`
	Title     *string `json:"title" validate:"omitempty,min=1,max=100"`
	Content   *string `json:"content" validate:"omitempty,min=1,max=10000"`
	Published *bool   `json:"published"`
}

// SearchPostRequest searches posts. Search is matched against title OR content,
// while Title and Content are independent filters that must all hold.
// UserID restricts the search to a single owner when non-zero.
type SearchPostRequest struct {
	Search  string `json:"search" validate:"omitempty,max=100"`
	Title   string `json:"title" validate:"omitempty,max=100"`
	Content string `json:"content" validate:"omitempty,max=10000"`
	UserID  uint   `json:"-"`
	Page    int    `json:"page" validate:"min=1"`
	Size    int    `json:"size" validate:"min=1,max=100"`
}

// PostResponse is the public projection of a Post.
type PostResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Published *bool      `json:"published,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (p *Post) ToResponse() PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: deletedAt(p.DeletedAt),
	}
}
