package domain

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Hookup, error)
	Get(ctx context.Context, id string) (*Hookup, error)
	List(ctx context.Context) ([]Hookup, error)
	Update(ctx context.Context, req UpdateRequest) (*Hookup, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name     string
	Type     string
	Endpoint string
}

// UpdateRequest is a partial update; nil fields keep their current value.
type UpdateRequest struct {
	ID       string
	Name     *string
	Endpoint *string
}
