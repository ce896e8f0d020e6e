package repositories

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// Repository defines data access for a single entity type.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindOne(ctx context.Context, q Query) (*T, error)
	FindMany(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Update(ctx context.Context, entity *T, columns ...string) error
	Delete(ctx context.Context, entity *T) error
}
