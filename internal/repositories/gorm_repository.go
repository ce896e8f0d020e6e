package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMRepository is a GORM implementation of Repository.
type GORMRepository[T any] struct {
	db *gorm.DB
}

// NewGORMRepository creates a repository for T backed by db. Soft-deleted
// rows are invisible to every operation.
func NewGORMRepository[T any](db *gorm.DB) *GORMRepository[T] {
	return &GORMRepository[T]{
		db: db,
	}
}

// Create inserts entity and fills its primary key.
func (r *GORMRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create %T: %w", entity, err)
	}
	return nil
}

// FindOne returns the first row matching q ordered by primary key.
func (r *GORMRepository[T]) FindOne(ctx context.Context, q Query) (*T, error) {
	var out T
	if err := q.where(r.db.WithContext(ctx)).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %T: %w", out, err)
	}
	return &out, nil
}

// byPrimaryKey orders rows the way First does, so pages are stable.
var byPrimaryKey = clause.OrderByColumn{Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey}}

// FindMany returns the window of rows selected by q ordered by primary key.
// A negative offset lies past every row and yields an empty result.
func (r *GORMRepository[T]) FindMany(ctx context.Context, q Query) ([]T, error) {
	out := []T{}
	if q.Offset < 0 {
		return out, nil
	}
	if err := q.window(q.where(r.db.WithContext(ctx))).Order(byPrimaryKey).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", out, err)
	}
	return out, nil
}

// Count returns the number of rows matching q, ignoring its window.
func (r *GORMRepository[T]) Count(ctx context.Context, q Query) (int64, error) {
	var n int64
	if err := q.where(r.db.WithContext(ctx).Model(new(T))).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", new(T), err)
	}
	return n, nil
}

// Update writes the given columns of entity, including zero values, to the
// row with the same primary key. Without columns every column is written.
func (r *GORMRepository[T]) Update(ctx context.Context, entity *T, columns ...string) error {
	db := r.db.WithContext(ctx).Model(entity)
	if len(columns) == 0 {
		db = db.Select("*")
	} else {
		db = db.Select(columns)
	}
	res := db.Updates(entity)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update %T: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes the row with the primary key of entity.
func (r *GORMRepository[T]) Delete(ctx context.Context, entity *T) error {
	res := r.db.WithContext(ctx).Delete(entity)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %T: %w", entity, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
