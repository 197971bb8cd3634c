package application

import "context"

// ListStore persists the shopping list, newest item first.
type ListStore interface {
	Append(ctx context.Context, item string) error
	All(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, item string) error
}
