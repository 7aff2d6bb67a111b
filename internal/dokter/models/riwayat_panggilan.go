package models

import "time"

// Aksi yang dicatat di riwayat panggilan.
const (
	ActionCalled    = "called"
	ActionRecalled  = "recalled"
	ActionTimeIn    = "time_in"
	ActionTimeOut   = "time_out"
	ActionCompleted = "completed"
	ActionConsulted = "consulted"
)

// CallLog is one row of the call_history table.
type CallLog struct {
	ID           int64     `json:"id"`
	QueueEntryID int64     `json:"queue_entry_id"`
	QueueNumber  string    `json:"queue_number"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
