package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c14220110/poliklinik-dashboard/internal/dokter/models"
)

// CallLogRepository menyimpan riwayat panggilan dan transisi antrian.
type CallLogRepository interface {
	Record(ctx context.Context, entry models.CallLog) error
	Recent(ctx context.Context, limit int) ([]models.CallLog, error)
}

// MariaDBCallLog stores call history in the call_history table.
type MariaDBCallLog struct {
	DB *sql.DB
}

func NewMariaDBCallLog(db *sql.DB) *MariaDBCallLog {
	return &MariaDBCallLog{DB: db}
}

func (r *MariaDBCallLog) Record(ctx context.Context, entry models.CallLog) error {
	query := `
		INSERT INTO call_history (queue_entry_id, queue_number, action, actor, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.DB.ExecContext(ctx, query,
		entry.QueueEntryID, entry.QueueNumber, entry.Action, entry.Actor, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert call_history: %w", err)
	}
	return nil
}

func (r *MariaDBCallLog) Recent(ctx context.Context, limit int) ([]models.CallLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
		SELECT id, queue_entry_id, queue_number, action, actor, created_at
		FROM call_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query call_history: %w", err)
	}
	defer rows.Close()

	list := []models.CallLog{}
	for rows.Next() {
		var l models.CallLog
		if err := rows.Scan(&l.ID, &l.QueueEntryID, &l.QueueNumber, &l.Action, &l.Actor, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan call_history: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// NopCallLog is used when no database is configured.
type NopCallLog struct{}

func (NopCallLog) Record(context.Context, models.CallLog) error { return nil }

func (NopCallLog) Recent(context.Context, int) ([]models.CallLog, error) {
	return []models.CallLog{}, nil
}

type actorKey struct{}

// WithActor attaches the logged-in username to ctx for the call history.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

func actorFrom(ctx context.Context) string {
	s, _ := ctx.Value(actorKey{}).(string)
	return s
}
