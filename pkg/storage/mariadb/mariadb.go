package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Connect membuka koneksi ke database MariaDB dan memastikan server bisa
// dijangkau. dsn dibangun dari config (Config.DSN).
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("gagal membuka koneksi ke database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("gagal melakukan ping ke database: %w", err)
	}
	return db, nil
}

// Schema membuat tabel riwayat panggilan.
const Schema = `
CREATE TABLE IF NOT EXISTS call_history (
	id             BIGINT AUTO_INCREMENT PRIMARY KEY,
	queue_entry_id BIGINT       NOT NULL,
	queue_number   VARCHAR(32)  NOT NULL DEFAULT '',
	action         VARCHAR(16)  NOT NULL,
	actor          VARCHAR(100) NOT NULL DEFAULT '',
	created_at     DATETIME     NOT NULL,
	INDEX idx_call_history_created_at (created_at),
	INDEX idx_call_history_entry (queue_entry_id)
)`

// Migrate applies Schema. It is safe to run more than once.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate call_history: %w", err)
	}
	return nil
}
