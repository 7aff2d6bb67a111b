package models

// DiagnosisRow adalah satu baris input diagnosa pada form konsultasi.
type DiagnosisRow struct {
	Name string `json:"name"`
}

// MedicineRow adalah satu baris input obat beserta dosisnya.
type MedicineRow struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

// ConsultationDraft is the unsaved consultation form of one queue entry.
// Empty rows are kept while editing and dropped only when saving.
type ConsultationDraft struct {
	QueueEntryID int64          `json:"queue_entry_id"`
	PatientName  string         `json:"patient_name"`
	Diagnoses    []DiagnosisRow `json:"diagnoses"`
	Medicines    []MedicineRow  `json:"medicines"`
	Notes        string         `json:"notes"`
	MCIssued     bool           `json:"mc_issued"`
	MCStart      string         `json:"mc_start"`
	MCEnd        string         `json:"mc_end"`
	MCAmount     string         `json:"mc_amount"`

	DiagnosisSuggestions []string `json:"diagnosis_suggestions"`
	MedicineSuggestions  []string `json:"medicine_suggestions"`
}

// NewConsultationDraft returns a form with one empty diagnosis row and one
// empty medicine row, MC set to No.
func NewConsultationDraft(entryID int64, patientName string) *ConsultationDraft {
	return &ConsultationDraft{
		QueueEntryID:         entryID,
		PatientName:          patientName,
		Diagnoses:            []DiagnosisRow{{}},
		Medicines:            []MedicineRow{{}},
		DiagnosisSuggestions: []string{},
		MedicineSuggestions:  []string{},
	}
}

// Clone returns a deep copy of d.
func (d *ConsultationDraft) Clone() *ConsultationDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Diagnoses = append([]DiagnosisRow{}, d.Diagnoses...)
	out.Medicines = append([]MedicineRow{}, d.Medicines...)
	out.DiagnosisSuggestions = append([]string{}, d.DiagnosisSuggestions...)
	out.MedicineSuggestions = append([]string{}, d.MedicineSuggestions...)
	return &out
}
