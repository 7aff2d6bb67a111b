package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
	"github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"
)

// ConsultationBackend is the part of the clinic backend the consultation
// form uses.
type ConsultationBackend interface {
	SaveConsultation(ctx context.Context, id int64, req clinicapi.ConsultationRequest) error
	DiagnosisSuggestions(ctx context.Context, query string) ([]string, error)
	MedicineSuggestions(ctx context.Context, query string) ([]string, error)
}

const (
	msgSaveFailed = "Failed to save consultation. Please try again."
	msgSaved      = "Consultation saved successfully!"
)

type suggestionField int

const (
	diagnosisField suggestionField = iota
	medicineField
)

// certificateForm holds the fields checked before a save. Dates are only
// present when a medical certificate is issued.
type certificateForm struct {
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	End    string `validate:"omitempty,datetime=2006-01-02"`
	Amount string `validate:"omitempty,numeric"`
}

// ConsultationService holds the consultation form of at most one queue
// entry. Edits stay local until Save sends the whole form in one request.
type ConsultationService struct {
	backend  ConsultationBackend
	store    *DashboardStore
	calls    CallLogRepository
	validate *validator.Validate
	limiter  *rate.Limiter
	logger   zerolog.Logger

	mu          sync.Mutex
	draft       *models.ConsultationDraft
	seq         [2]uint64
	subscribers map[int]func(*models.ConsultationDraft)
	nextSubID   int
	version     uint64

	deliverMu sync.Mutex
	delivered uint64
}

// NewConsultationService builds the form controller. suggestionRPS limits
// how often suggestion lookups reach the backend.
func NewConsultationService(backend ConsultationBackend, store *DashboardStore, calls CallLogRepository, suggestionRPS float64, logger zerolog.Logger) *ConsultationService {
	if calls == nil {
		calls = NopCallLog{}
	}
	if suggestionRPS <= 0 {
		suggestionRPS = 5
	}
	return &ConsultationService{
		backend:     backend,
		store:       store,
		calls:       calls,
		validate:    validator.New(),
		limiter:     rate.NewLimiter(rate.Limit(suggestionRPS), 1),
		logger:      logger.With().Str("component", "consultation").Logger(),
		subscribers: make(map[int]func(*models.ConsultationDraft)),
	}
}

// Subscribe registers fn for every change of the form; nil means closed.
func (s *ConsultationService) Subscribe(fn func(*models.ConsultationDraft)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// OpenFor starts an empty form for the given entry. A form open for any
// other entry is dropped without asking.
func (s *ConsultationService) OpenFor(entryID int64, patientName string) *models.ConsultationDraft {
	s.mu.Lock()
	if s.draft != nil && s.draft.QueueEntryID != entryID {
		s.logger.Info().Int64("discarded_entry_id", s.draft.QueueEntryID).Int64("queue_entry_id", entryID).Msg("unsaved consultation discarded")
	}
	s.draft = models.NewConsultationDraft(entryID, patientName)
	s.seq[diagnosisField]++
	s.seq[medicineField]++
	snap, subs, ver := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap, subs, ver)
	return snap
}

// Close discards the form.
func (s *ConsultationService) Close() {
	s.mu.Lock()
	s.draft = nil
	s.seq[diagnosisField]++
	s.seq[medicineField]++
	snap, subs, ver := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap, subs, ver)
}

// Draft returns a copy of the open form.
func (s *ConsultationService) Draft() (*models.ConsultationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, ErrNoOpenConsultation
	}
	return s.draft.Clone(), nil
}

func (s *ConsultationService) AddDiagnosis() (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.Diagnoses = append(d.Diagnoses, models.DiagnosisRow{})
		return nil
	})
}

func (s *ConsultationService) RemoveDiagnosis(i int) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Diagnoses) {
			return ErrRowOutOfRange
		}
		d.Diagnoses = append(d.Diagnoses[:i:i], d.Diagnoses[i+1:]...)
		return nil
	})
}

func (s *ConsultationService) SetDiagnosis(i int, name string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Diagnoses) {
			return ErrRowOutOfRange
		}
		d.Diagnoses[i].Name = name
		return nil
	})
}

func (s *ConsultationService) AddMedicine() (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.Medicines = append(d.Medicines, models.MedicineRow{})
		return nil
	})
}

func (s *ConsultationService) RemoveMedicine(i int) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Medicines) {
			return ErrRowOutOfRange
		}
		d.Medicines = append(d.Medicines[:i:i], d.Medicines[i+1:]...)
		return nil
	})
}

func (s *ConsultationService) SetMedicineName(i int, name string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Medicines) {
			return ErrRowOutOfRange
		}
		d.Medicines[i].Name = name
		return nil
	})
}

func (s *ConsultationService) SetMedicineDosage(i int, dosage string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Medicines) {
			return ErrRowOutOfRange
		}
		d.Medicines[i].Dosage = dosage
		return nil
	})
}

func (s *ConsultationService) SetNotes(notes string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.Notes = notes
		return nil
	})
}

// SetMC toggles the medical certificate. Dates entered earlier are kept in
// the form but ignored while the flag is off.
func (s *ConsultationService) SetMC(issued bool) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.MCIssued = issued
		return nil
	})
}

func (s *ConsultationService) SetMCStart(date string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.MCStart = date
		return nil
	})
}

func (s *ConsultationService) SetMCEnd(date string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.MCEnd = date
		return nil
	})
}

func (s *ConsultationService) SetMCAmount(amount string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.MCAmount = amount
		return nil
	})
}

// CertificateChange carries the certificate fields to change; nil fields
// are left alone.
type CertificateChange struct {
	Issued *bool
	Start  *string
	End    *string
	Amount *string
}

// SetCertificate applies ch to the open form in one edit.
func (s *ConsultationService) SetCertificate(ch CertificateChange) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if ch.Issued != nil {
			d.MCIssued = *ch.Issued
		}
		if ch.Start != nil {
			d.MCStart = *ch.Start
		}
		if ch.End != nil {
			d.MCEnd = *ch.End
		}
		if ch.Amount != nil {
			d.MCAmount = *ch.Amount
		}
		return nil
	})
}

// Replace overwrites every editable field of the open form at once.
func (s *ConsultationService) Replace(in models.ConsultationDraft) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		d.Diagnoses = append([]models.DiagnosisRow{}, in.Diagnoses...)
		d.Medicines = append([]models.MedicineRow{}, in.Medicines...)
		d.Notes = in.Notes
		d.MCIssued = in.MCIssued
		d.MCStart = in.MCStart
		d.MCEnd = in.MCEnd
		d.MCAmount = in.MCAmount
		return nil
	})
}

// TypeDiagnosis sets row i and refreshes the diagnosis suggestions for it.
func (s *ConsultationService) TypeDiagnosis(ctx context.Context, i int, value string) (*models.ConsultationDraft, error) {
	if _, err := s.SetDiagnosis(i, value); err != nil {
		return nil, err
	}
	return s.lookup(ctx, diagnosisField, value)
}

// TypeMedicine sets the name of row i and refreshes the medicine suggestions.
func (s *ConsultationService) TypeMedicine(ctx context.Context, i int, value string) (*models.ConsultationDraft, error) {
	if _, err := s.SetMedicineName(i, value); err != nil {
		return nil, err
	}
	return s.lookup(ctx, medicineField, value)
}

// SelectDiagnosisSuggestion puts the picked suggestion in row i and clears the list.
func (s *ConsultationService) SelectDiagnosisSuggestion(i int, suggestion string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Diagnoses) {
			return ErrRowOutOfRange
		}
		d.Diagnoses[i].Name = suggestion
		d.DiagnosisSuggestions = []string{}
		s.seq[diagnosisField]++
		return nil
	})
}

// SelectMedicineSuggestion puts the picked suggestion in row i and clears the list.
func (s *ConsultationService) SelectMedicineSuggestion(i int, suggestion string) (*models.ConsultationDraft, error) {
	return s.edit(func(d *models.ConsultationDraft) error {
		if i < 0 || i >= len(d.Medicines) {
			return ErrRowOutOfRange
		}
		d.Medicines[i].Name = suggestion
		d.MedicineSuggestions = []string{}
		s.seq[medicineField]++
		return nil
	})
}

// lookup replaces the suggestion list for field. An empty query clears the
// list without a request. A response that arrives after a newer keystroke
// is dropped.
func (s *ConsultationService) lookup(ctx context.Context, field suggestionField, value string) (*models.ConsultationDraft, error) {
	query := strings.TrimSpace(value)

	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, ErrNoOpenConsultation
	}
	s.seq[field]++
	ticket := s.seq[field]
	if query == "" {
		setSuggestions(s.draft, field, []string{})
		snap, subs, ver := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap, subs, ver)
		return snap, nil
	}
	s.mu.Unlock()

	if err := s.limiter.Wait(ctx); err != nil {
		return s.Draft()
	}
	var (
		list []string
		err  error
	)
	if field == diagnosisField {
		list, err = s.backend.DiagnosisSuggestions(ctx, query)
	} else {
		list, err = s.backend.MedicineSuggestions(ctx, query)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("error fetching suggestions")
		return s.Draft()
	}

	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, ErrNoOpenConsultation
	}
	if s.seq[field] != ticket {
		snap := s.draft.Clone()
		s.mu.Unlock()
		return snap, nil
	}
	if list == nil {
		list = []string{}
	}
	setSuggestions(s.draft, field, list)
	snap, subs, ver := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap, subs, ver)
	return snap, nil
}

func setSuggestions(d *models.ConsultationDraft, field suggestionField, list []string) {
	if field == diagnosisField {
		d.DiagnosisSuggestions = list
		return
	}
	d.MedicineSuggestions = list
}

// Save sends the whole form. On success the form is closed; on failure it
// stays open, unchanged, for another try.
func (s *ConsultationService) Save(ctx context.Context) error {
	d, err := s.Draft()
	if err != nil {
		return err
	}

	req, err := s.buildRequest(d)
	if err != nil {
		s.store.Notify(models.NoticeError, err.Error())
		return err
	}

	if err := s.backend.SaveConsultation(ctx, d.QueueEntryID, req); err != nil {
		s.logger.Error().Err(err).Int64("queue_entry_id", d.QueueEntryID).Msg("error saving consultation")
		s.store.Notify(models.NoticeError, msgSaveFailed)
		return fmt.Errorf("save consultation %d: %w", d.QueueEntryID, err)
	}

	s.mu.Lock()
	if s.draft != nil && s.draft.QueueEntryID == d.QueueEntryID {
		s.draft = nil
	}
	snap, subs, ver := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap, subs, ver)

	s.store.Notify(models.NoticeInfo, msgSaved)
	if err := s.calls.Record(ctx, models.CallLog{
		QueueEntryID: d.QueueEntryID,
		Action:       models.ActionConsulted,
		Actor:        actorFrom(ctx),
		CreatedAt:    s.store.now(),
	}); err != nil {
		s.logger.Warn().Err(err).Int64("queue_entry_id", d.QueueEntryID).Msg("call history not recorded")
	}
	return nil
}

// buildRequest turns the form into the backend payload. Rows without a
// name are dropped here and nowhere else.
func (s *ConsultationService) buildRequest(d *models.ConsultationDraft) (clinicapi.ConsultationRequest, error) {
	// certificate fields only count while MC is issued
	var form certificateForm
	if d.MCIssued {
		form.Start = strings.TrimSpace(d.MCStart)
		form.End = strings.TrimSpace(d.MCEnd)
		form.Amount = strings.TrimSpace(d.MCAmount)
	}
	if err := s.validate.Struct(form); err != nil {
		return clinicapi.ConsultationRequest{}, fmt.Errorf("%w: %s", ErrInvalidDraft, describeValidation(err))
	}
	if form.Start != "" && form.End != "" && form.End < form.Start {
		return clinicapi.ConsultationRequest{}, fmt.Errorf("%w: MC end date is before start date", ErrInvalidDraft)
	}

	names := []string{}
	for _, row := range d.Diagnoses {
		if strings.TrimSpace(row.Name) != "" {
			names = append(names, row.Name)
		}
	}
	meds := []clinicapi.PrescribedMedicine{}
	for _, row := range d.Medicines {
		if strings.TrimSpace(row.Name) != "" {
			meds = append(meds, clinicapi.PrescribedMedicine{Name: row.Name, Dosage: row.Dosage})
		}
	}
	details, err := json.Marshal(names)
	if err != nil {
		return clinicapi.ConsultationRequest{}, err
	}
	prescribed, err := json.Marshal(meds)
	if err != nil {
		return clinicapi.ConsultationRequest{}, err
	}

	req := clinicapi.ConsultationRequest{
		ConsultationDetails: string(details),
		PrescribedMedicine:  string(prescribed),
		Notes:               strings.TrimSpace(d.Notes),
		MCStartDate:         form.Start,
		MCEndDate:           form.End,
	}
	if d.MCIssued {
		req.MCIssued = 1
	}
	if form.Amount != "" {
		amount, err := strconv.ParseFloat(form.Amount, 64)
		if err != nil {
			return clinicapi.ConsultationRequest{}, fmt.Errorf("%w: amount must be a number", ErrInvalidDraft)
		}
		req.MCAmount = &amount
	}
	return req, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Start":
			parts = append(parts, "MC start date must be YYYY-MM-DD")
		case "End":
			parts = append(parts, "MC end date must be YYYY-MM-DD")
		case "Amount":
			parts = append(parts, "amount must be a number")
		default:
			parts = append(parts, fe.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func (s *ConsultationService) edit(fn func(d *models.ConsultationDraft) error) (*models.ConsultationDraft, error) {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, ErrNoOpenConsultation
	}
	if err := fn(s.draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	snap, subs, ver := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap, subs, ver)
	return snap, nil
}

func (s *ConsultationService) snapshotLocked() (*models.ConsultationDraft, []func(*models.ConsultationDraft), uint64) {
	subs := make([]func(*models.ConsultationDraft), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.version++
	return s.draft.Clone(), subs, s.version
}

// publish hands d to subscribers unless a newer snapshot already went out.
func (s *ConsultationService) publish(d *models.ConsultationDraft, subs []func(*models.ConsultationDraft), version uint64) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version
	for _, fn := range subs {
		fn(d)
	}
}
