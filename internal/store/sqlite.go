// Package store provides storage backends for LeavePipe.
//
// This file implements the SQLite-backed workflow store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	"github.com/BTreeMap/LeavePipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CreateLeaveRequest persists a new request and reads back its id.
func (s *SQLiteStore) CreateLeaveRequest(r *models.LeaveRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = models.LeaveStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`INSERT INTO leave_requests (requester_name, days, reason, status, substitute_name, substitute_note, rejection_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequesterName, r.Days, r.Reason, r.Status, nilIfEmpty(r.SubstituteName), nilIfEmpty(r.SubstituteNote), nilIfEmpty(r.RejectionReason), r.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateLeaveRequest failed", "error", err, "requester", r.RequesterName)
		return fmt.Errorf("failed to insert leave request for %s: %w", r.RequesterName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read leave request id: %w", err)
	}
	r.ID = int(id)
	slog.Debug("SQLiteStore CreateLeaveRequest succeeded", "id", r.ID)
	return nil
}

const leaveColumns = `id, requester_name, days, reason, status, substitute_name, substitute_note, rejection_reason, created_at, decided_at`

// GetLeaveRequest returns the request with the given id, or nil.
func (s *SQLiteStore) GetLeaveRequest(id int) (*models.LeaveRequest, error) {
	row := s.db.QueryRow(`SELECT `+leaveColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanLeaveRow(row)
	if err != nil {
		slog.Error("SQLiteStore GetLeaveRequest failed", "error", err, "id", id)
		return nil, err
	}
	return r, nil
}

// ListLeaveRequests returns all requests in id order.
func (s *SQLiteStore) ListLeaveRequests() ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT ` + leaveColumns + ` FROM leave_requests ORDER BY id`)
}

// ListLeaveRequestsByStatus returns requests with the given status in id order.
func (s *SQLiteStore) ListLeaveRequestsByStatus(status models.LeaveStatus) ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT `+leaveColumns+` FROM leave_requests WHERE status = ? ORDER BY id`, status)
}

// ListLeaveRequestsByRequester returns requests by requester name in id order.
func (s *SQLiteStore) ListLeaveRequestsByRequester(name string) ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT `+leaveColumns+` FROM leave_requests WHERE LOWER(requester_name) = ? ORDER BY id`, strings.ToLower(name))
}

func (s *SQLiteStore) queryLeaves(query string, args ...interface{}) ([]models.LeaveRequest, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("SQLiteStore leave query failed", "error", err)
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var out []models.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRows(rows)
		if err != nil {
			slog.Error("SQLiteStore leave scan failed", "error", err)
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave request rows: %w", err)
	}
	return out, nil
}

// UpdateLeaveStatus transitions a request's status.
func (s *SQLiteStore) UpdateLeaveStatus(id int, status models.LeaveStatus, rejectionReason string) error {
	var decidedAt interface{}
	if status.IsTerminal() {
		decidedAt = time.Now()
	}
	res, err := s.db.Exec(`UPDATE leave_requests SET status = ?, rejection_reason = COALESCE(?, rejection_reason), decided_at = COALESCE(?, decided_at) WHERE id = ?`,
		status, nilIfEmpty(rejectionReason), decidedAt, id)
	if err != nil {
		slog.Error("SQLiteStore UpdateLeaveStatus failed", "error", err, "id", id, "status", status)
		return fmt.Errorf("failed to update leave request %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrRequestNotFound
	}
	slog.Debug("SQLiteStore UpdateLeaveStatus succeeded", "id", id, "status", status)
	return nil
}

// SetLeaveSubstitute records the current substitute name or note on a request.
func (s *SQLiteStore) SetLeaveSubstitute(id int, substituteName, note string) error {
	res, err := s.db.Exec(`UPDATE leave_requests SET substitute_name = ?, substitute_note = ? WHERE id = ?`,
		nilIfEmpty(substituteName), nilIfEmpty(note), id)
	if err != nil {
		slog.Error("SQLiteStore SetLeaveSubstitute failed", "error", err, "id", id)
		return fmt.Errorf("failed to set substitute on leave request %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrRequestNotFound
	}
	return nil
}

// CreateSubstitution persists a new substitution record.
func (s *SQLiteStore) CreateSubstitution(sub *models.Substitution) error {
	if sub.Status == "" {
		sub.Status = models.SubstitutionPending
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	res, err := s.db.Exec(`INSERT INTO substitutions (leave_id, substitute_name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		sub.LeaveID, sub.SubstituteName, sub.Status, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore CreateSubstitution failed", "error", err, "leave_id", sub.LeaveID)
		return fmt.Errorf("failed to insert substitution for leave %d: %w", sub.LeaveID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read substitution id: %w", err)
	}
	sub.ID = int(id)
	return nil
}

const substitutionColumns = `id, leave_id, substitute_name, status, created_at, updated_at`

// GetSubstitution returns the substitution with the given id, or nil.
func (s *SQLiteStore) GetSubstitution(id int) (*models.Substitution, error) {
	row := s.db.QueryRow(`SELECT `+substitutionColumns+` FROM substitutions WHERE id = ?`, id)
	var sub models.Substitution
	err := row.Scan(&sub.ID, &sub.LeaveID, &sub.SubstituteName, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetSubstitution failed", "error", err, "id", id)
		return nil, err
	}
	return &sub, nil
}

// ListSubstitutionsByLeave returns all substitutions for a request in id order.
func (s *SQLiteStore) ListSubstitutionsByLeave(leaveID int) ([]models.Substitution, error) {
	rows, err := s.db.Query(`SELECT `+substitutionColumns+` FROM substitutions WHERE leave_id = ? ORDER BY id`, leaveID)
	if err != nil {
		slog.Error("SQLiteStore ListSubstitutionsByLeave query failed", "error", err, "leave_id", leaveID)
		return nil, fmt.Errorf("failed to query substitutions: %w", err)
	}
	defer rows.Close()

	var out []models.Substitution
	for rows.Next() {
		var sub models.Substitution
		if err := rows.Scan(&sub.ID, &sub.LeaveID, &sub.SubstituteName, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan substitution row: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate substitution rows: %w", err)
	}
	return out, nil
}

// UpdateSubstitutionStatus transitions a substitution's status.
func (s *SQLiteStore) UpdateSubstitutionStatus(id int, status models.SubstitutionStatus) error {
	res, err := s.db.Exec(`UPDATE substitutions SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now(), id)
	if err != nil {
		slog.Error("SQLiteStore UpdateSubstitutionStatus failed", "error", err, "id", id)
		return fmt.Errorf("failed to update substitution %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrSubstitutionNotFound
	}
	return nil
}

// AddReceipt records a notification delivery attempt.
func (s *SQLiteStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES (?, ?, ?)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

// GetReceipts returns all recorded delivery attempts.
func (s *SQLiteStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts`)
	if err != nil {
		slog.Error("SQLiteStore GetReceipts query failed", "error", err)
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var r models.Receipt
		if err := rows.Scan(&r.To, &r.Status, &r.Time); err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipt rows: %w", err)
	}
	return receipts, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
