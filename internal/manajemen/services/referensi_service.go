package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-dashboard/internal/manajemen/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
)

// ErrEmptyName is returned when an add is ignored because the name is blank.
var ErrEmptyName = errors.New("name is empty")

// ReferenceBackend is the catalogue part of the clinic backend.
type ReferenceBackend interface {
	ListReference(ctx context.Context, kind clinicapi.ReferenceKind) ([]clinicapi.ReferenceItem, error)
	AddReference(ctx context.Context, kind clinicapi.ReferenceKind, name string) error
	UpdateReference(ctx context.Context, kind clinicapi.ReferenceKind, id int64, name string) error
	DeleteReference(ctx context.Context, kind clinicapi.ReferenceKind, id int64) error
}

// ReferenceService keeps the diagnosis and medicine lists shown on the
// reference screen. Every write is followed by a fetch of the same list.
// A failure leaves the last list in place and sets Error; the next success
// clears it.
type ReferenceService struct {
	backend ReferenceBackend
	logger  zerolog.Logger

	mu      sync.Mutex
	state   models.ReferenceState
	pending int
}

func NewReferenceService(backend ReferenceBackend, logger zerolog.Logger) *ReferenceService {
	return &ReferenceService{
		backend: backend,
		logger:  logger.With().Str("component", "reference").Logger(),
		state: models.ReferenceState{
			Diagnoses: []clinicapi.ReferenceItem{},
			Medicines: []clinicapi.ReferenceItem{},
		},
	}
}

// State returns a copy of the screen state.
func (s *ReferenceService) State() models.ReferenceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Initialize loads medicines, then diagnoses.
func (s *ReferenceService) Initialize(ctx context.Context) error {
	mErr := s.Fetch(ctx, clinicapi.Medicines)
	dErr := s.Fetch(ctx, clinicapi.Diagnoses)
	return errors.Join(mErr, dErr)
}

// Fetch replaces the list for kind with the backend's.
func (s *ReferenceService) Fetch(ctx context.Context, kind clinicapi.ReferenceKind) error {
	items, err := s.backend.ListReference(ctx, kind)
	if err != nil {
		s.fail(err, "Failed to fetch "+string(kind))
		return fmt.Errorf("fetch %s: %w", kind, err)
	}
	if items == nil {
		items = []clinicapi.ReferenceItem{}
	}
	s.mu.Lock()
	if kind == clinicapi.Diagnoses {
		s.state.Diagnoses = items
	} else {
		s.state.Medicines = items
	}
	s.state.Error = ""
	s.mu.Unlock()
	return nil
}

// Add creates an entry under the trimmed name. A blank name is ignored
// without a request.
func (s *ReferenceService) Add(ctx context.Context, kind clinicapi.ReferenceKind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.write(ctx, kind, "add", func() error {
		return s.backend.AddReference(ctx, kind, name)
	})
}

// Update renames an entry. Like Add, a blank name never reaches the backend.
func (s *ReferenceService) Update(ctx context.Context, kind clinicapi.ReferenceKind, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.write(ctx, kind, "update", func() error {
		return s.backend.UpdateReference(ctx, kind, id, name)
	})
}

func (s *ReferenceService) Delete(ctx context.Context, kind clinicapi.ReferenceKind, id int64) error {
	return s.write(ctx, kind, "delete", func() error {
		return s.backend.DeleteReference(ctx, kind, id)
	})
}

func (s *ReferenceService) write(ctx context.Context, kind clinicapi.ReferenceKind, verb string, fn func() error) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := fn(); err != nil {
		s.fail(err, fmt.Sprintf("Failed to %s %s", verb, kind.Singular()))
		return fmt.Errorf("%s %s: %w", verb, kind.Singular(), err)
	}
	return s.Fetch(ctx, kind)
}

func (s *ReferenceService) setLoading(on bool) {
	s.mu.Lock()
	if on {
		s.pending++
	} else {
		s.pending--
	}
	s.state.Loading = s.pending > 0
	s.mu.Unlock()
}

func (s *ReferenceService) fail(err error, msg string) {
	s.logger.Error().Err(err).Msg(strings.ToLower(msg))
	s.mu.Lock()
	s.state.Error = msg
	s.mu.Unlock()
}
