package booking

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Sphe667/ViewLab/internal/db"
	"github.com/Sphe667/ViewLab/internal/lab"
)

// memStore is an in-memory Repository, Inventory and TxRunner. A transaction
// holds the store lock for its whole duration and rolls back on error, which
// gives the same all-or-nothing outcome the Postgres transaction gives.
type memStore struct {
	mu        sync.Mutex
	labs      map[int64]*lab.Lab
	computers map[int64]*lab.Computer
	bookings  map[int64]*Booking
	nextID    int64

	busy       int  // next busy InTx calls fail with db.ErrBusy
	staleReads bool // reads report computers free and students idle
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		labs:      make(map[int64]*lab.Lab),
		computers: make(map[int64]*lab.Computer),
		bookings:  make(map[int64]*Booking),
	}
}

// addLab creates a lab with n computers numbered from 1 and returns their ids.
func (m *memStore) addLab(name string, n int) (int64, []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	l := &lab.Lab{ID: m.nextID, Name: name, ComputerCount: n}
	m.labs[l.ID] = l

	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		m.nextID++
		m.computers[m.nextID] = &lab.Computer{ID: m.nextID, LabID: l.ID, LabName: name, Number: i}
		ids = append(ids, m.nextID)
	}
	return l.ID, ids
}

// lock takes the store lock unless ctx already runs inside InTx.
func (m *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.busy > 0 {
		m.busy--
		return fmt.Errorf("%w: injected", db.ErrBusy)
	}

	computers := cloneAll(m.computers)
	bookings := cloneAll(m.bookings)
	nextID := m.nextID

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.computers, m.bookings, m.nextID = computers, bookings, nextID
		return err
	}
	return nil
}

func cloneAll[T any](src map[int64]*T) map[int64]*T {
	dst := make(map[int64]*T, len(src))
	for k, v := range src {
		c := *v
		dst[k] = &c
	}
	return dst
}

// Inventory

func (m *memStore) GetLab(ctx context.Context, id int64) (*lab.Lab, error) {
	defer m.lock(ctx)()
	l, ok := m.labs[id]
	if !ok {
		return nil, lab.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (m *memStore) GetComputer(ctx context.Context, id int64) (*lab.Computer, error) {
	defer m.lock(ctx)()
	comp, ok := m.computers[id]
	if !ok {
		return nil, lab.ErrComputerNotFound
	}
	c := *comp
	if m.staleReads {
		c.IsBooked = false
	}
	return &c, nil
}

func (m *memStore) ListAvailableComputers(ctx context.Context, labID *int64) ([]*lab.Computer, error) {
	defer m.lock(ctx)()
	var out []*lab.Computer
	for _, comp := range m.computers {
		if comp.IsBooked || (labID != nil && comp.LabID != *labID) {
			continue
		}
		c := *comp
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *lab.Computer) int {
		if a.LabID != b.LabID {
			return int(a.LabID - b.LabID)
		}
		return a.Number - b.Number
	})
	return out, nil
}

func (m *memStore) SetBooked(ctx context.Context, computerID int64, booked bool) error {
	defer m.lock(ctx)()
	comp, ok := m.computers[computerID]
	if !ok {
		return lab.ErrComputerNotFound
	}
	if comp.IsBooked == booked {
		if booked {
			return lab.ErrComputerUnavailable
		}
		return lab.ErrComputerStateConflict
	}
	comp.IsBooked = booked
	return nil
}

// Repository

func (m *memStore) FindActiveByStudent(ctx context.Context, studentID int64) (*Booking, error) {
	defer m.lock(ctx)()
	if m.staleReads {
		return nil, nil
	}
	for _, b := range m.bookings {
		if b.StudentID == studentID && b.Active {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(ctx context.Context, id int64) (*Booking, error) {
	defer m.lock(ctx)()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memStore) FindByIDForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return m.FindByID(ctx, id)
}

// Insert enforces the same uniqueness the partial indexes enforce.
func (m *memStore) Insert(ctx context.Context, b *Booking) error {
	defer m.lock(ctx)()
	if _, ok := m.computers[b.ComputerID]; !ok {
		return ErrComputerNotFound
	}
	for _, other := range m.bookings {
		if !other.Active {
			continue
		}
		if other.StudentID == b.StudentID {
			return ErrAlreadyBooked
		}
		if other.ComputerID == b.ComputerID {
			return ErrComputerUnavailable
		}
	}

	m.nextID++
	b.ID = m.nextID
	b.Active = true
	b.CancelledAt = nil
	c := *b
	m.bookings[b.ID] = &c
	return nil
}

func (m *memStore) MarkCancelled(ctx context.Context, id int64, at time.Time) error {
	defer m.lock(ctx)()
	b, ok := m.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if !b.Active {
		return ErrAlreadyCancelled
	}
	b.Active = false
	b.CancelledAt = &at
	return nil
}

func (m *memStore) ListByStudent(ctx context.Context, studentID int64, filter Filter) ([]*Booking, int, error) {
	defer m.lock(ctx)()
	var all []*Booking
	for _, b := range m.bookings {
		if b.StudentID != studentID || (filter.Active != nil && b.Active != *filter.Active) {
			continue
		}
		c := *b
		all = append(all, &c)
	}
	slices.SortFunc(all, func(a, b *Booking) int {
		if c := b.BookingTime.Compare(a.BookingTime); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})

	page, size := max(filter.Page, 1), filter.PageSize
	if size <= 0 {
		size = 20
	}
	total := len(all)
	start := min((page-1)*size, total)
	end := min(start+size, total)
	return all[start:end], total, nil
}

// checkInvariants reports every way the computer flags and the ledger disagree.
func (m *memStore) checkInvariants() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var problems []string
	activeByComputer := make(map[int64]int)
	activeByStudent := make(map[int64]int)
	for _, b := range m.bookings {
		if b.Active != (b.CancelledAt == nil) {
			problems = append(problems, fmt.Sprintf("booking %d: active=%v cancelled_at=%v", b.ID, b.Active, b.CancelledAt))
		}
		if b.Active {
			activeByComputer[b.ComputerID]++
			activeByStudent[b.StudentID]++
		}
	}
	for _, id := range slices.Sorted(maps.Keys(m.computers)) {
		comp := m.computers[id]
		n := activeByComputer[id]
		if n > 1 {
			problems = append(problems, fmt.Sprintf("computer %d has %d active bookings", id, n))
		}
		if comp.IsBooked != (n > 0) {
			problems = append(problems, fmt.Sprintf("computer %d is_booked=%v with %d active bookings", id, comp.IsBooked, n))
		}
	}
	for student, n := range activeByStudent {
		if n > 1 {
			problems = append(problems, fmt.Sprintf("student %d has %d active bookings", student, n))
		}
	}
	return problems
}
