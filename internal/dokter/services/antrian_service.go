package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/c14220110/poliklinik-dashboard/internal/announcement"
	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
)

// QueueBackend is the part of the clinic backend the queue screen uses.
type QueueBackend interface {
	ListPatients(ctx context.Context) ([]clinicapi.PatientRecord, error)
	NextPatient(ctx context.Context) (*clinicapi.NextPatientResponse, error)
	TimeIn(ctx context.Context, id int64) error
	TimeOut(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	Dashboard(ctx context.Context) (*clinicapi.DashboardResponse, error)
}

// Announcer calls a queue number aloud.
type Announcer interface {
	Announce(ctx context.Context, queueNumber string) (announcement.Announcement, error)
}

const (
	msgCallNextFailed = "Failed to call the next patient. Please try again."
	msgNoPatients     = "No patients waiting in the queue."
	msgNoCurrent      = "No current patient to repeat the call for."
	msgTimeInFailed   = "Failed to update Time In. Please try again."
	msgTimeOutFailed  = "Failed to update Time Out. Please try again."
	msgCompleteFailed = "Failed to update complete. Please try again."
)

type QueueOptions struct {
	// RepeatCooldown is how long the repeat-call control stays busy.
	RepeatCooldown time.Duration
}

// QueueService keeps the doctor's view of the queue in step with the
// backend: the visible list, the stats panel, the patient currently called
// and whether calling the next patient is allowed.
//
// Operations are not serialized against each other. Two overlapping
// CallNext requests both apply their result and the one that completes last
// is left as the current call.
type QueueService struct {
	backend   QueueBackend
	announcer Announcer
	store     *DashboardStore
	calls     CallLogRepository
	opts      QueueOptions
	logger    zerolog.Logger
	now       func() time.Time

	inflightNext int // guarded by the store lock
	repeatBusy   atomic.Bool
}

func NewQueueService(backend QueueBackend, announcer Announcer, store *DashboardStore, calls CallLogRepository, opts QueueOptions, logger zerolog.Logger) *QueueService {
	if calls == nil {
		calls = NopCallLog{}
	}
	return &QueueService{
		backend:   backend,
		announcer: announcer,
		store:     store,
		calls:     calls,
		opts:      opts,
		logger:    logger.With().Str("component", "queue").Logger(),
		now:       time.Now,
	}
}

func (s *QueueService) Store() *DashboardStore { return s.store }

// Initialize loads the queue and the stats once, when the screen starts.
// Either load may fail on its own; the screen keeps what it has.
func (s *QueueService) Initialize(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh reloads the queue list and then the stats.
func (s *QueueService) Refresh(ctx context.Context) error {
	qErr := s.LoadQueue(ctx)
	sErr := s.LoadStats(ctx)
	return errors.Join(qErr, sErr)
}

// LoadQueue replaces the visible list with the backend's. On failure the
// last known list stays in place.
func (s *QueueService) LoadQueue(ctx context.Context) error {
	records, err := s.backend.ListPatients(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching patients")
		return fmt.Errorf("load queue: %w", err)
	}

	now := s.now()
	entries := make([]models.QueueEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, toQueueEntry(r, now))
	}
	s.store.Update(func(st *models.DashboardState) {
		st.Entries = entries
	})
	return nil
}

// LoadStats refreshes the stats panel; stale values stay on failure.
func (s *QueueService) LoadStats(ctx context.Context) error {
	res, err := s.backend.Dashboard(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error fetching stats")
		return fmt.Errorf("load stats: %w", err)
	}

	stats := models.EmptyStats()
	if res != nil && res.Counts != nil {
		stats.NewPatients = len(res.Counts.TotalPatient)
		stats.Completed = res.Counts.Completed
		stats.Pending = res.Counts.Waiting
		if v := strings.TrimSpace(res.Counts.AvgWaitTime.String()); v != "" {
			stats.AvgWaitTime = v
		}
	}
	s.store.Update(func(st *models.DashboardState) {
		st.Stats = stats
	})
	return nil
}

// CallNext asks the backend for the next waiting patient, makes it the
// current call, announces it and reloads the list.
func (s *QueueService) CallNext(ctx context.Context) (*models.QueueEntry, error) {
	disabled := false
	s.store.Update(func(st *models.DashboardState) {
		if st.CallNextDisabled {
			disabled = true
			return
		}
		s.inflightNext++
		st.LoadingNext = true
	})
	if disabled {
		return nil, ErrCallNextDisabled
	}
	defer s.store.Update(func(st *models.DashboardState) {
		s.inflightNext--
		st.LoadingNext = s.inflightNext > 0
	})

	res, err := s.backend.NextPatient(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error calling next patient")
		s.store.Notify(models.NoticeError, msgCallNextFailed)
		return nil, fmt.Errorf("call next: %w", err)
	}
	if res == nil || !res.Success || len(res.Data) == 0 {
		s.store.Notify(models.NoticeEmpty, msgNoPatients)
		return nil, ErrNoPatientsWaiting
	}

	now := s.now()
	entry := toQueueEntry(res.Data[0], now)
	s.store.Update(func(st *models.DashboardState) {
		st.CurrentCall = &models.CurrentCall{Entry: entry, CalledAt: now}
		st.CallNextDisabled = false
	})

	if _, err := s.announcer.Announce(ctx, entry.QueueNumber); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", entry.ID).Msg("announcement failed")
	}
	s.store.Notify(models.NoticeInfo, fmt.Sprintf("Next patient called: (Queue No: %s)", entry.QueueNumber))
	s.record(ctx, entry.ID, entry.QueueNumber, models.ActionCalled)

	_ = s.LoadQueue(ctx)
	return &entry, nil
}

// RepeatCall announces the current call again. It does not touch the
// backend. Only one repeat runs at a time; the control stays busy for the
// configured cooldown.
func (s *QueueService) RepeatCall(ctx context.Context) (*models.QueueEntry, error) {
	current := s.store.Snapshot().CurrentCall
	if current == nil {
		s.store.Notify(models.NoticeEmpty, msgNoCurrent)
		return nil, ErrNoCurrentPatient
	}
	if !s.repeatBusy.CompareAndSwap(false, true) {
		return nil, ErrRepeatInProgress
	}
	defer s.repeatBusy.Store(false)

	entry := current.Entry
	s.store.Update(func(st *models.DashboardState) {
		st.LoadingRepeat = true
	})
	finish := func() {
		s.store.Update(func(st *models.DashboardState) {
			st.LoadingRepeat = false
		})
	}

	if _, err := s.announcer.Announce(ctx, entry.QueueNumber); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", entry.ID).Msg("repeat announcement failed")
	}
	s.record(ctx, entry.ID, entry.QueueNumber, models.ActionRecalled)

	if s.opts.RepeatCooldown > 0 {
		timer := time.NewTimer(s.opts.RepeatCooldown)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			finish()
			return &entry, ctx.Err()
		}
	}
	finish()
	s.store.Notify(models.NoticeInfo, fmt.Sprintf("Repeated call for patient: (Queue No: %s)", entry.QueueNumber))
	return &entry, nil
}

// TimeIn records the patient's arrival in the room. While a patient is in,
// calling the next one is disabled.
func (s *QueueService) TimeIn(ctx context.Context, id int64) error {
	if err := s.backend.TimeIn(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", id).Msg("error updating time in")
		s.store.Notify(models.NoticeError, clinicapi.ErrorMessage(err, msgTimeInFailed))
		return fmt.Errorf("time in %d: %w", id, err)
	}

	_ = s.Refresh(ctx)
	s.store.Update(func(st *models.DashboardState) {
		st.CallNextDisabled = true
		st.CurrentCall = nil
	})
	s.store.Notify(models.NoticeInfo, "Time In recorded successfully!")
	s.record(ctx, id, s.queueNumberOf(id), models.ActionTimeIn)
	return nil
}

// TimeOut records the patient leaving and allows calling the next one.
func (s *QueueService) TimeOut(ctx context.Context, id int64) error {
	if err := s.backend.TimeOut(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", id).Msg("error updating time out")
		s.store.Notify(models.NoticeError, clinicapi.ErrorMessage(err, msgTimeOutFailed))
		return fmt.Errorf("time out %d: %w", id, err)
	}

	_ = s.Refresh(ctx)
	s.store.Update(func(st *models.DashboardState) {
		st.CallNextDisabled = false
	})
	s.store.Notify(models.NoticeInfo, "Time Out recorded successfully!")
	s.record(ctx, id, s.queueNumberOf(id), models.ActionTimeOut)
	return nil
}

// Complete marks the entry Completed locally after the backend accepts it
// and reloads the stats. Time in/out are left as they are.
func (s *QueueService) Complete(ctx context.Context, id int64) error {
	if e, ok := s.findEntry(id); ok && e.Status == models.StatusCompleted {
		return ErrAlreadyCompleted
	}

	if err := s.backend.Complete(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", id).Msg("error updating complete")
		s.store.Notify(models.NoticeError, msgCompleteFailed)
		return fmt.Errorf("complete %d: %w", id, err)
	}

	s.store.Update(func(st *models.DashboardState) {
		for i := range st.Entries {
			if st.Entries[i].ID == id {
				st.Entries[i].Status = models.StatusCompleted
			}
		}
	})
	_ = s.LoadStats(ctx)
	s.record(ctx, id, s.queueNumberOf(id), models.ActionCompleted)
	return nil
}

// Watch refreshes the queue and stats every interval until ctx is done.
func (s *QueueService) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// CallHistory returns the most recent call history rows.
func (s *QueueService) CallHistory(ctx context.Context, limit int) ([]models.CallLog, error) {
	return s.calls.Recent(ctx, limit)
}

func (s *QueueService) findEntry(id int64) (models.QueueEntry, bool) {
	for _, e := range s.store.Snapshot().Entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.QueueEntry{}, false
}

func (s *QueueService) queueNumberOf(id int64) string {
	e, _ := s.findEntry(id)
	return e.QueueNumber
}

func (s *QueueService) record(ctx context.Context, id int64, queueNumber, action string) {
	err := s.calls.Record(ctx, models.CallLog{
		QueueEntryID: id,
		QueueNumber:  queueNumber,
		Action:       action,
		Actor:        actorFrom(ctx),
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("queue_entry_id", id).Str("action", action).Msg("call history not recorded")
	}
}

// toQueueEntry maps a backend record to a row of the queue table.
func toQueueEntry(r clinicapi.PatientRecord, now time.Time) models.QueueEntry {
	e := models.QueueEntry{
		ID:          r.ID,
		QueueNumber: r.QueueNumber.String(),
		PatientName: models.NotAvailable,
		EmployeeID:  models.NotAvailable,
		Gender:      models.NotAvailable,
		Age:         models.NotAvailable,
		Status:      r.Status,
	}
	if r.PatientInTime != nil {
		e.TimeIn = *r.PatientInTime
	}
	if r.PatientOutTime != nil {
		e.TimeOut = *r.PatientOutTime
	}
	if emp := r.Employee; emp != nil {
		e.PatientName = orNotAvailable(emp.Name)
		e.EmployeeID = orNotAvailable(emp.EmployeeID.String())
		e.Gender = orNotAvailable(emp.Gender)
		if emp.DOB != "" {
			e.Age = ageFromDOB(emp.DOB, now)
		}
	}
	return e
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NotAvailable
	}
	return s
}

var dobLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.000000Z"}

// ageFromDOB subtracts birth year from the current year. Month and day are
// ignored, so the age is one too high before this year's birthday.
func ageFromDOB(dob string, now time.Time) string {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, dob); err == nil {
			return fmt.Sprintf("%d", now.Year()-t.Year())
		}
	}
	return models.NotAvailable
}
