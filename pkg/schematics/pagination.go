package schematics

import (
	"context"
	"iter"
)

// PageFunc fetches one page. An empty token requests the first page.
type PageFunc[T any] func(ctx context.Context, token string) (*ListResponse[T], error)

// Cursor walks the pages of a list operation lazily. Every call to Next
// performs exactly one fetch; nothing is fetched ahead. The cursor is
// exhausted once a page comes back without a next-page token.
type Cursor[T any] struct {
	fetch PageFunc[T]
	token string
	done  bool
}

// NewCursor creates a cursor over the given page function.
func NewCursor[T any](fetch PageFunc[T]) *Cursor[T] {
	return &Cursor[T]{fetch: fetch}
}

// HasNext returns true if another page can be fetched.
func (c *Cursor[T]) HasNext() bool {
	return !c.done
}

// Token returns the last-seen next-page token.
func (c *Cursor[T]) Token() string {
	return c.token
}

// Next fetches the next page. It returns ErrNoMorePages once the cursor is
// exhausted. A failed fetch leaves the cursor where it was so the call can be
// repeated.
func (c *Cursor[T]) Next(ctx context.Context) (*ListResponse[T], error) {
	if c.done {
		return nil, ErrNoMorePages
	}

	page, err := c.fetch(ctx, c.token)
	if err != nil {
		return nil, err
	}

	c.token = page.NextPageToken

	if c.token == "" {
		c.done = true
	}

	return page, nil
}

// Reset rewinds the cursor to the first page.
func (c *Cursor[T]) Reset() {
	c.token = ""
	c.done = false
}

// All fetches the remaining pages and returns their resources.
func (c *Cursor[T]) All(ctx context.Context) ([]T, error) {
	var all []T

	for c.HasNext() {
		page, err := c.Next(ctx)
		if err != nil {
			return all, err
		}

		all = append(all, page.Resources...)
	}

	return all, nil
}

// ForEach calls fn for each resource of the remaining pages.
func (c *Cursor[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for c.HasNext() {
		page, err := c.Next(ctx)
		if err != nil {
			return err
		}

		for _, resource := range page.Resources {
			err = fn(resource)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Pages returns a sequence over the remaining pages. Iteration stops after
// the first error.
func (c *Cursor[T]) Pages(ctx context.Context) iter.Seq2[*ListResponse[T], error] {
	return func(yield func(*ListResponse[T], error) bool) {
		for c.HasNext() {
			page, err := c.Next(ctx)
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}
