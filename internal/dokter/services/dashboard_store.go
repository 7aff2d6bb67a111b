package services

import (
	"sync"
	"time"

	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
)

// DashboardStore owns the doctor screen state. Every change is applied under
// one lock and then handed, as a copy, to each subscriber. Subscribers see
// changes in the order they were applied.
type DashboardStore struct {
	deliver sync.Mutex // held from apply through fan-out

	mu          sync.Mutex
	state       models.DashboardState
	subscribers map[int]func(models.DashboardState)
	nextID      int
	now         func() time.Time
}

func NewDashboardStore() *DashboardStore {
	return &DashboardStore{
		state: models.DashboardState{
			Entries: []models.QueueEntry{},
			Stats:   models.EmptyStats(),
		},
		subscribers: make(map[int]func(models.DashboardState)),
		now:         time.Now,
	}
}

// Snapshot returns a copy of the current state.
func (s *DashboardStore) Snapshot() models.DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every future change and returns a function
// that removes it.
func (s *DashboardStore) Subscribe(fn func(models.DashboardState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Update applies fn to the state and notifies subscribers outside the state
// lock, so they may call Snapshot. Subscribers must not call Update.
func (s *DashboardStore) Update(fn func(st *models.DashboardState)) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	fn(&s.state)
	s.state.UpdatedAt = s.now()
	snap := s.state.Clone()
	subs := make([]func(models.DashboardState), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// Notify publishes a notice for the doctor.
func (s *DashboardStore) Notify(level, message string) {
	s.Update(func(st *models.DashboardState) {
		st.Notice = &models.Notice{Level: level, Message: message, CreatedAt: s.now()}
	})
}
