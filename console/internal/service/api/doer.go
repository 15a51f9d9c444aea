package api

import "context"

// Doer is the part of the client the entity services need.
type Doer interface {
	Do(ctx context.Context, method, path string, in, out any) (int, error)
}

var _ Doer = (*Client)(nil)
