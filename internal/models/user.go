package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account of the content API.
type User struct {
	gorm.Model
	Email    string  `gorm:"uniqueIndex;type:varchar(100);not null"`
	Name     string  `gorm:"type:varchar(100);not null"`
	Password string  `gorm:"type:varchar(255);not null"` // bcrypt hash, never projected
	Avatar   *string `gorm:"type:varchar(255)"`
	Token    *string `gorm:"uniqueIndex;type:varchar(512)"`
}

// RegisterUserRequest is the schema for creating an account.
type RegisterUserRequest struct {
	Email    string  `json:"email" validate:"required,email,max=100"`
	Password string  `json:"password" validate:"required,max=100"`
	Name     string  `json:"name" validate:"required,max=100"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=255"`
}

// LoginUserRequest is the schema for exchanging credentials for a session token.
type LoginUserRequest struct {
	Email    string `json:"email" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

// UpdateUserRequest is a partial update of the acting account. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=1,max=100"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=255"`
}

// UserResponse is the public projection of a User.
type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Avatar    *string    `json:"avatar,omitempty"`
	Token     *string    `json:"token,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ToResponse projects the user, dropping the password hash.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Token:     u.Token,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: deletedAt(u.DeletedAt),
	}
}

func deletedAt(d gorm.DeletedAt) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
