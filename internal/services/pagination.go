package services

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"contentapi/internal/models"
	"contentapi/internal/repositories"
)

// totalPages is ceil(total/size); zero matches yield zero pages.
func totalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// pageOffset returns the number of rows before page, or -1 when that number
// does not fit in an int.
func pageOffset(page, size int) int {
	if page < 1 || size < 1 || page-1 > math.MaxInt/size {
		return -1
	}
	return (page - 1) * size
}

// searchPage fetches one page of rows matching q together with the paging
// block. The page and the full count are queried concurrently. Pages past
// the last one are empty.
func searchPage[T any](ctx context.Context, repo repositories.Repository[T], q repositories.Query, page, size int) ([]T, *models.Paging, error) {
	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = repo.FindMany(gctx, q.Page(pageOffset(page, size), size))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.Count(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return items, &models.Paging{
		CurrentPage: page,
		Size:        size,
		TotalPage:   totalPages(total, size),
	}, nil
}
