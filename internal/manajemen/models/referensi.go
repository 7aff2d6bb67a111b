package models

import "github.com/c14220110/poliklinik-dashboard/pkg/clinicapi"

// ReferenceState adalah isi layar pengelolaan diagnosa dan obat.
type ReferenceState struct {
	Diagnoses []clinicapi.ReferenceItem `json:"diagnoses"`
	Medicines []clinicapi.ReferenceItem `json:"medicines"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
}

// Items returns the list held for kind.
func (s ReferenceState) Items(kind clinicapi.ReferenceKind) []clinicapi.ReferenceItem {
	if kind == clinicapi.Diagnoses {
		return s.Diagnoses
	}
	return s.Medicines
}

func (s ReferenceState) Clone() ReferenceState {
	out := s
	out.Diagnoses = append([]clinicapi.ReferenceItem{}, s.Diagnoses...)
	out.Medicines = append([]clinicapi.ReferenceItem{}, s.Medicines...)
	return out
}

// ReferenceRequest adalah payload tambah/ubah nama diagnosa atau obat.
type ReferenceRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
