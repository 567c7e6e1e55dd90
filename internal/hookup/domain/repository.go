package domain

import "context"

// Repository owns ID assignment and the name/endpoint uniqueness invariants.
// Every implementation must enforce them the same way.
type Repository interface {
	// Add assigns a fresh ID and stores h. Any ID already set on h is ignored.
	Add(ctx context.Context, h *Hookup) (*Hookup, error)
	// FindByID returns nil, nil when no hookup has the given ID.
	FindByID(ctx context.Context, id ID) (*Hookup, error)
	FindAll(ctx context.Context) ([]Hookup, error)
	// Update applies Name and Endpoint of h to the stored hookup with the same ID.
	Update(ctx context.Context, h *Hookup) (*Hookup, error)
	// Remove deletes the hookup with the ID of h, failing ErrNotFound when absent.
	Remove(ctx context.Context, h *Hookup) error
}
