package person

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository with the same id semantics as
// the SQLite store: ids start at 1, increase monotonically and are never
// reused after deletion.
//
// Thread Safety: safe for concurrent use.
type MemoryRepository struct {
	mu     sync.RWMutex
	people map[int64]Fields
	lastID int64

	// Fail, when set, is returned (wrapped in ErrStorage) by every call.
	// Tests use it to simulate an unavailable storage file.
	Fail error
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{people: make(map[int64]Fields)}
}

// Initialize is a no-op apart from the injected failure. Idempotent.
func (m *MemoryRepository) Initialize(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fault("creating people table")
}

// Create stores f under the next id.
func (m *MemoryRepository) Create(_ context.Context, f Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("inserting person"); err != nil {
		return 0, err
	}
	m.lastID++
	m.people[m.lastID] = copyFields(f.Normalize())
	return m.lastID, nil
}

// List returns every person ordered by id.
func (m *MemoryRepository) List(_ context.Context) ([]Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("querying people"); err != nil {
		return nil, err
	}

	people := make([]Person, 0, len(m.people))
	for id, f := range m.people {
		people = append(people, Person{ID: id, Fields: copyFields(f)})
	}
	sort.Slice(people, func(i, j int) bool { return people[i].ID < people[j].ID })
	return people, nil
}

// Count returns the number of stored people.
func (m *MemoryRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("counting people"); err != nil {
		return 0, err
	}
	return len(m.people), nil
}

// Get returns the person with the given id.
func (m *MemoryRepository) Get(_ context.Context, id int64) (Person, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.fault("getting person"); err != nil {
		return Person{}, false, err
	}

	f, ok := m.people[id]
	if !ok {
		return Person{}, false, nil
	}
	return Person{ID: id, Fields: copyFields(f)}, true, nil
}

// Update replaces the fields of an existing person.
func (m *MemoryRepository) Update(_ context.Context, id int64, f Fields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("updating person"); err != nil {
		return 0, err
	}

	if _, ok := m.people[id]; !ok {
		return 0, nil
	}
	m.people[id] = copyFields(f.Normalize())
	return 1, nil
}

// Delete removes the person with the given id.
func (m *MemoryRepository) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("deleting person"); err != nil {
		return 0, err
	}

	if _, ok := m.people[id]; !ok {
		return 0, nil
	}
	delete(m.people, id)
	return 1, nil
}

// fault returns the configured failure wrapped like a storage error.
// Must be called with m.mu held.
func (m *MemoryRepository) fault(op string) error {
	if m.Fail == nil {
		return nil
	}
	return wrapStorage(op, m.Fail)
}

// copyFields deep-copies the optional pointers so callers can't mutate
// stored state.
func copyFields(f Fields) Fields {
	out := f
	for _, p := range []**string{
		&out.Address, &out.PhoneNumber, &out.Email,
		&out.CityOfOrigin, &out.DateOfBirth, &out.Religion,
	} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return out
}
