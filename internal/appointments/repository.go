package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores appointments. Admin operations are scoped to a practice.
type Repository interface {
	Insert(ctx context.Context, appt *Appointment) error
	Confirmation(ctx context.Context, id string) (*ConfirmationDetails, error)
	Get(ctx context.Context, practiceID, id string) (*Appointment, error)
	SetScheduled(ctx context.Context, practiceID, id string, isScheduled bool) (*Appointment, error)
	Schedule(ctx context.Context, practiceID, id, date, clock string) (*Appointment, error)
	Cancel(ctx context.Context, practiceID, id string) ([]Appointment, error)
	List(ctx context.Context, practiceID string, filter ListFilter) ([]Appointment, error)
}

// InMemoryRepository keeps appointments in a map; used by tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]Appointment
	now   func() time.Time
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		items: make(map[string]Appointment),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *InMemoryRepository) Insert(_ context.Context, appt *Appointment) error {
	if appt == nil {
		return ErrNilAppointment
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *appt
	stored.CreatedAt = r.now()
	r.items[appt.ID] = stored
	return nil
}

func (r *InMemoryRepository) Confirmation(_ context.Context, id string) (*ConfirmationDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	details := appt.Confirmation()
	return &details, nil
}

func (r *InMemoryRepository) Get(_ context.Context, practiceID, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok || appt.PracticeID != practiceID {
		return nil, ErrNotFound
	}
	return &appt, nil
}

func (r *InMemoryRepository) SetScheduled(_ context.Context, practiceID, id string, isScheduled bool) (*Appointment, error) {
	return r.update(practiceID, id, func(a *Appointment) {
		a.IsScheduled = isScheduled
		if !isScheduled {
			a.ScheduledDate = ""
			a.ScheduledTime = ""
		}
	})
}

func (r *InMemoryRepository) Schedule(_ context.Context, practiceID, id, date, clock string) (*Appointment, error) {
	return r.update(practiceID, id, func(a *Appointment) {
		a.IsScheduled = true
		a.ScheduledDate = date
		a.ScheduledTime = clock
	})
}

func (r *InMemoryRepository) Cancel(_ context.Context, practiceID, id string) ([]Appointment, error) {
	appt, err := r.update(practiceID, id, func(a *Appointment) { a.IsCancelled = true })
	if err != nil {
		return nil, err
	}
	return []Appointment{*appt}, nil
}

func (r *InMemoryRepository) List(_ context.Context, practiceID string, filter ListFilter) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Appointment
	for _, a := range r.items {
		if a.PracticeID != practiceID || !matches(a, filter) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedDate != out[j].RequestedDate {
			return out[i].RequestedDate < out[j].RequestedDate
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if limit := filter.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) update(practiceID, id string, mutate func(*Appointment)) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok || appt.PracticeID != practiceID {
		return nil, ErrNotFound
	}
	mutate(&appt)
	r.items[id] = appt
	return &appt, nil
}

func matches(a Appointment, f ListFilter) bool {
	switch f.Status {
	case StatusUnscheduled:
		if a.IsScheduled || a.IsCancelled {
			return false
		}
	case StatusScheduled:
		if !a.IsScheduled || a.IsCancelled {
			return false
		}
	case StatusCancelled:
		if !a.IsCancelled {
			return false
		}
	case StatusEmergency:
		if !a.IsEmergency || a.IsCancelled {
			return false
		}
	}
	if f.From != "" && a.RequestedDate < f.From {
		return false
	}
	if f.To != "" && a.RequestedDate > f.To {
		return false
	}
	return true
}
