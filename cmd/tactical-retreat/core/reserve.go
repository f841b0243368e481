package core

import (
	"fmt"
	"sync"
)

// ReservePool is the pursuing side's reserve: units that are not yet in the
// engagement. The scheduler claims units by removing them and releases them
// by adding them back.
type ReservePool interface {
	Snapshot() []*Unit
	Remove(id string) error
	Add(u *Unit) error
}

// Reserve is an in-memory, insertion ordered ReservePool that is safe for
// concurrent use.
type Reserve struct {
	mu      sync.Mutex
	units   []*Unit
	retired map[string]struct{}
}

// NewReserve creates a reserve holding units in the given order
func NewReserve(units ...*Unit) *Reserve {
	r := &Reserve{
		units:   make([]*Unit, 0, len(units)),
		retired: make(map[string]struct{}),
	}
	for _, u := range units {
		if u != nil && r.indexOf(u.ID) < 0 {
			r.units = append(r.units, u)
		}
	}
	return r
}

func (r *Reserve) indexOf(id string) int {
	for i, u := range r.units {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current reserve listing
func (r *Reserve) Snapshot() []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Remove takes a unit out of the reserve
func (r *Reserve) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", id, ErrUnitNotFound)
	}
	r.units = append(r.units[:i], r.units[i+1:]...)
	return nil
}

// Add appends a unit to the reserve. Retired units cannot come back.
func (r *Reserve) Add(u *Unit) error {
	if u == nil {
		return fmt.Errorf("nil unit: %w", ErrUnitLost)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.retired[u.ID]; gone {
		return fmt.Errorf("%s: %w", u.Label(), ErrUnitLost)
	}
	if r.indexOf(u.ID) >= 0 {
		return fmt.Errorf("%s: %w", u.Label(), ErrDuplicateUnit)
	}
	r.units = append(r.units, u)
	return nil
}

// Retire marks a unit as destroyed or otherwise gone for good. It is
// removed from the reserve if present and later Adds fail.
func (r *Reserve) Retire(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		r.units = append(r.units[:i], r.units[i+1:]...)
	}
	r.retired[id] = struct{}{}
}

// Deploy draws up to limit units from the front of the reserve, the way the
// pursuing side's own AI would commit them to battle.
func (r *Reserve) Deploy(limit int) []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || len(r.units) == 0 {
		return nil
	}
	if limit > len(r.units) {
		limit = len(r.units)
	}

	deployed := make([]*Unit, limit)
	copy(deployed, r.units[:limit])
	r.units = append(r.units[:0], r.units[limit:]...)
	return deployed
}

// Len returns the number of units in reserve
func (r *Reserve) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.units)
}

// Contains reports whether id is currently in reserve
func (r *Reserve) Contains(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(id) >= 0
}
