package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"contentapi/internal/repositories"
)

// MockRepository is a mock implementation of repositories.Repository.
type MockRepository[T any] struct {
	mock.Mock
}

var _ repositories.Repository[struct{}] = (*MockRepository[struct{}])(nil)

func (m *MockRepository[T]) Create(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRepository[T]) FindOne(ctx context.Context, q repositories.Query) (*T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) FindMany(ctx context.Context, q repositories.Query) ([]T, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context, q repositories.Query) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository[T]) Update(ctx context.Context, entity *T, columns ...string) error {
	args := m.Called(ctx, entity, columns)
	return args.Error(0)
}

func (m *MockRepository[T]) Delete(ctx context.Context, entity *T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}
