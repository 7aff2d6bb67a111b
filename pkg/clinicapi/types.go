package clinicapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FlexString accepts a JSON string, number or null. The backend is not
// consistent about quoting queue numbers and employee ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("clinicapi: expected string or number, got %s", string(b))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

type Employee struct {
	Name       string     `json:"name"`
	EmployeeID FlexString `json:"employee_id"`
	Gender     string     `json:"gender"`
	DOB        string     `json:"dob"`
}

// PatientRecord is one row of /patientlist and /patients/next.
type PatientRecord struct {
	ID             int64      `json:"id"`
	QueueNumber    FlexString `json:"queue_number"`
	Employee       *Employee  `json:"employee"`
	Status         string     `json:"status"`
	PatientInTime  *string    `json:"patient_in_time"`
	PatientOutTime *string    `json:"patient_out_time"`
}

type NextPatientResponse struct {
	Success bool            `json:"success"`
	Data    []PatientRecord `json:"data"`
}

type DashboardCounts struct {
	TotalPatient []json.RawMessage `json:"totalpatient"`
	Completed    int               `json:"completed"`
	Waiting      int               `json:"waiting"`
	AvgWaitTime  FlexString        `json:"avgWaitTime"`
}

type DashboardResponse struct {
	Counts *DashboardCounts `json:"counts"`
}

// ConsultationRequest is the body of PUT /queue/{id}. The two detail fields
// are JSON documents encoded as strings.
type ConsultationRequest struct {
	ConsultationDetails string   `json:"consultation_details"`
	PrescribedMedicine  string   `json:"prescribed_medicine"`
	MCIssued            int      `json:"mc_issued"`
	Notes               string   `json:"notes,omitempty"`
	MCStartDate         string   `json:"mc_start_date,omitempty"`
	MCEndDate           string   `json:"mc_end_date,omitempty"`
	MCAmount            *float64 `json:"mc_amount,omitempty"`
}

// PrescribedMedicine is one element of ConsultationRequest.PrescribedMedicine.
type PrescribedMedicine struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

// ReferenceKind selects the diagnosis or medicine catalogue.
type ReferenceKind string

const (
	Diagnoses ReferenceKind = "diagnoses"
	Medicines ReferenceKind = "medicines"
)

func (k ReferenceKind) Valid() bool {
	return k == Diagnoses || k == Medicines
}

// Singular is used in user-facing messages ("diagnosis", "medicine").
func (k ReferenceKind) Singular() string {
	if k == Diagnoses {
		return "diagnosis"
	}
	return "medicine"
}

type ReferenceItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReferenceList accepts the shapes the catalogue endpoints answer with: an
// array of items, a single item, or an object whose values are items
// (ordered by key, numerically when the keys are numbers).
type ReferenceList []ReferenceItem

func (l *ReferenceList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ReferenceList{}
		return nil
	}
	switch b[0] {
	case '[':
		var items []ReferenceItem
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	case '{':
	default:
		return fmt.Errorf("clinicapi: expected array or object of reference items, got %s", string(b))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	_, hasID := fields["id"]
	_, hasName := fields["name"]
	if hasID || hasName || len(fields) == 0 {
		var item ReferenceItem
		if err := json.Unmarshal(b, &item); err != nil {
			return err
		}
		if len(fields) == 0 {
			*l = ReferenceList{}
		} else {
			*l = ReferenceList{item}
		}
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		c, errC := strconv.Atoi(keys[j])
		if errA == nil && errC == nil {
			return a < c
		}
		return keys[i] < keys[j]
	})
	items := make(ReferenceList, 0, len(keys))
	for _, k := range keys {
		var item ReferenceItem
		if err := json.Unmarshal(fields[k], &item); err != nil {
			return fmt.Errorf("clinicapi: reference item %q: %w", k, err)
		}
		items = append(items, item)
	}
	*l = items
	return nil
}

type referenceRequest struct {
	Name string `json:"name"`
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}
