package repository

import (
	"context"
	"sync"

	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
)

// Memory keeps hookups in process. Each mutation runs its conflict scan and
// write under one lock so the check and the act cannot interleave.
type Memory struct {
	mu    sync.Mutex
	items []hookupdomain.Hookup
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Add(ctx context.Context, h *hookupdomain.Hookup) (*hookupdomain.Hookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := *h
	item.ID = hookupdomain.ID{}
	if err := m.checkConflicts(&item); err != nil {
		return nil, err
	}

	item.ID = hookupdomain.NewID()
	m.items = append(m.items, item)

	out := item
	return &out, nil
}

func (m *Memory) FindByID(ctx context.Context, id hookupdomain.ID) (*hookupdomain.Hookup, error) {
	if !id.IsAssigned() {
		return nil, hookupdomain.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	out := m.items[idx]
	return &out, nil
}

func (m *Memory) FindAll(ctx context.Context) ([]hookupdomain.Hookup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]hookupdomain.Hookup, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *Memory) Update(ctx context.Context, h *hookupdomain.Hookup) (*hookupdomain.Hookup, error) {
	if !h.ID.IsAssigned() {
		return nil, hookupdomain.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(h.ID)
	if idx < 0 {
		return nil, hookupdomain.ErrNotFound
	}
	if err := m.checkConflicts(h); err != nil {
		return nil, err
	}

	item := m.items[idx]
	item.Name = h.Name
	item.Endpoint = h.Endpoint
	m.items[idx] = item

	out := item
	return &out, nil
}

func (m *Memory) Remove(ctx context.Context, h *hookupdomain.Hookup) error {
	if !h.ID.IsAssigned() {
		return hookupdomain.ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(h.ID)
	if idx < 0 {
		return hookupdomain.ErrNotFound
	}
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	return nil
}

// Len returns the number of stored hookups.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) checkConflicts(h *hookupdomain.Hookup) error {
	for i := range m.items {
		if err := h.ConflictsWith(&m.items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) indexOf(id hookupdomain.ID) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

var _ hookupdomain.Repository = (*Memory)(nil)
