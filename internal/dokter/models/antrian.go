package models

import "time"

// Status antrian sebagaimana disimpan di backend.
const (
	StatusWaiting    = "Waiting"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
)

// NotAvailable is shown for employee fields the backend did not send.
const NotAvailable = "N/A"

// QueueEntry adalah satu baris antrian pasien yang ditampilkan di dashboard.
type QueueEntry struct {
	ID          int64  `json:"id"`
	QueueNumber string `json:"queue_number"`
	PatientName string `json:"name"`
	EmployeeID  string `json:"emp_id"`
	Gender      string `json:"gender"`
	Age         string `json:"age"`
	Status      string `json:"status"`
	TimeIn      string `json:"time_in"`
	TimeOut     string `json:"time_out"`
}

// Stats is the aggregate panel above the queue table.
type Stats struct {
	NewPatients int    `json:"new_patients"`
	Completed   int    `json:"completed"`
	Pending     int    `json:"pending"`
	AvgWaitTime string `json:"avg_waiting_time"`
}

// EmptyStats is shown before the first successful stats load.
func EmptyStats() Stats {
	return Stats{AvgWaitTime: "0 min"}
}

// CurrentCall is the entry last returned by call-next.
type CurrentCall struct {
	Entry    QueueEntry `json:"entry"`
	CalledAt time.Time  `json:"called_at"`
}

// Notice levels.
const (
	NoticeInfo  = "info"
	NoticeEmpty = "empty"
	NoticeError = "error"
)

// Notice adalah pesan yang harus dilihat dokter (pengganti alert di layar).
type Notice struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardState is everything the doctor screen renders.
type DashboardState struct {
	Entries          []QueueEntry `json:"entries"`
	Stats            Stats        `json:"stats"`
	CurrentCall      *CurrentCall `json:"current_call"`
	CallNextDisabled bool         `json:"call_next_disabled"`
	LoadingNext      bool         `json:"loading_next"`
	LoadingRepeat    bool         `json:"loading_repeat"`
	Notice           *Notice      `json:"notice,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Clone returns a copy that shares no slices or pointers with s.
func (s DashboardState) Clone() DashboardState {
	out := s
	out.Entries = append([]QueueEntry(nil), s.Entries...)
	if out.Entries == nil {
		out.Entries = []QueueEntry{}
	}
	if s.CurrentCall != nil {
		cc := *s.CurrentCall
		out.CurrentCall = &cc
	}
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return out
}
