// Package store provides storage backends for LeavePipe.
//
// This file implements the PostgreSQL-backed workflow store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/BTreeMap/LeavePipe/internal/models"
	_ "github.com/lib/pq"
)

// Connection pool settings for the PostgreSQL store.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running PostgreSQL migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// CreateLeaveRequest persists a new request and reads back its id.
func (s *PostgresStore) CreateLeaveRequest(r *models.LeaveRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = models.LeaveStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	err := s.db.QueryRow(`INSERT INTO leave_requests (requester_name, days, reason, status, substitute_name, substitute_note, rejection_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		r.RequesterName, r.Days, r.Reason, r.Status, nilIfEmpty(r.SubstituteName), nilIfEmpty(r.SubstituteNote), nilIfEmpty(r.RejectionReason), r.CreatedAt).Scan(&r.ID)
	if err != nil {
		slog.Error("PostgresStore CreateLeaveRequest failed", "error", err, "requester", r.RequesterName)
		return fmt.Errorf("failed to insert leave request for %s: %w", r.RequesterName, err)
	}
	slog.Debug("PostgresStore CreateLeaveRequest succeeded", "id", r.ID)
	return nil
}

// GetLeaveRequest returns the request with the given id, or nil.
func (s *PostgresStore) GetLeaveRequest(id int) (*models.LeaveRequest, error) {
	row := s.db.QueryRow(`SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id)
	r, err := scanLeaveRow(row)
	if err != nil {
		slog.Error("PostgresStore GetLeaveRequest failed", "error", err, "id", id)
		return nil, err
	}
	return r, nil
}

// ListLeaveRequests returns all requests in id order.
func (s *PostgresStore) ListLeaveRequests() ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT ` + leaveColumns + ` FROM leave_requests ORDER BY id`)
}

// ListLeaveRequestsByStatus returns requests with the given status in id order.
func (s *PostgresStore) ListLeaveRequestsByStatus(status models.LeaveStatus) ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT `+leaveColumns+` FROM leave_requests WHERE status = $1 ORDER BY id`, status)
}

// ListLeaveRequestsByRequester returns requests by requester name in id order.
func (s *PostgresStore) ListLeaveRequestsByRequester(name string) ([]models.LeaveRequest, error) {
	return s.queryLeaves(`SELECT `+leaveColumns+` FROM leave_requests WHERE LOWER(requester_name) = $1 ORDER BY id`, strings.ToLower(name))
}

func (s *PostgresStore) queryLeaves(query string, args ...interface{}) ([]models.LeaveRequest, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		slog.Error("PostgresStore leave query failed", "error", err)
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var out []models.LeaveRequest
	for rows.Next() {
		r, err := scanLeaveRows(rows)
		if err != nil {
			slog.Error("PostgresStore leave scan failed", "error", err)
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
func (s *PostgresStore) UpdateLeaveStatus(id int, status models.LeaveStatus, rejectionReason string) error {
	var decidedAt interface{}
	if status.IsTerminal() {
		decidedAt = time.Now()
	}
	res, err := s.db.Exec(`UPDATE leave_requests SET status = $1, rejection_reason = COALESCE($2, rejection_reason), decided_at = COALESCE($3, decided_at) WHERE id = $4`,
		status, nilIfEmpty(rejectionReason), decidedAt, id)
	if err != nil {
		slog.Error("PostgresStore UpdateLeaveStatus failed", "error", err, "id", id, "status", status)
		return fmt.Errorf("failed to update leave request %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrRequestNotFound
	}
	slog.Debug("PostgresStore UpdateLeaveStatus succeeded", "id", id, "status", status)
	return nil
}

// SetLeaveSubstitute records the current substitute name or note on a request.
func (s *PostgresStore) SetLeaveSubstitute(id int, substituteName, note string) error {
	res, err := s.db.Exec(`UPDATE leave_requests SET substitute_name = $1, substitute_note = $2 WHERE id = $3`,
		nilIfEmpty(substituteName), nilIfEmpty(note), id)
	if err != nil {
		slog.Error("PostgresStore SetLeaveSubstitute failed", "error", err, "id", id)
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
func (s *PostgresStore) CreateSubstitution(sub *models.Substitution) error {
	if sub.Status == "" {
		sub.Status = models.SubstitutionPending
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	err := s.db.QueryRow(`INSERT INTO substitutions (leave_id, substitute_name, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sub.LeaveID, sub.SubstituteName, sub.Status, sub.CreatedAt, sub.UpdatedAt).Scan(&sub.ID)
	if err != nil {
		slog.Error("PostgresStore CreateSubstitution failed", "error", err, "leave_id", sub.LeaveID)
		return fmt.Errorf("failed to insert substitution for leave %d: %w", sub.LeaveID, err)
	}
	return nil
}

// GetSubstitution returns the substitution with the given id, or nil.
func (s *PostgresStore) GetSubstitution(id int) (*models.Substitution, error) {
	row := s.db.QueryRow(`SELECT `+substitutionColumns+` FROM substitutions WHERE id = $1`, id)
	var sub models.Substitution
	err := row.Scan(&sub.ID, &sub.LeaveID, &sub.SubstituteName, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetSubstitution failed", "error", err, "id", id)
		return nil, err
	}
	return &sub, nil
}

// ListSubstitutionsByLeave returns all substitutions for a request in id order.
func (s *PostgresStore) ListSubstitutionsByLeave(leaveID int) ([]models.Substitution, error) {
	rows, err := s.db.Query(`SELECT `+substitutionColumns+` FROM substitutions WHERE leave_id = $1 ORDER BY id`, leaveID)
	if err != nil {
		slog.Error("PostgresStore ListSubstitutionsByLeave query failed", "error", err, "leave_id", leaveID)
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
func (s *PostgresStore) UpdateSubstitutionStatus(id int, status models.SubstitutionStatus) error {
	res, err := s.db.Exec(`UPDATE substitutions SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		slog.Error("PostgresStore UpdateSubstitutionStatus failed", "error", err, "id", id)
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
func (s *PostgresStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES ($1, $2, $3)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

// GetReceipts returns all recorded delivery attempts.
func (s *PostgresStore) GetReceipts() ([]models.Receipt, error) {
	rows, err := s.db.Query(`SELECT recipient, status, time FROM receipts ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore GetReceipts query failed", "error", err)
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

// Close closes the PostgreSQL database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing PostgreSQL database connection")
	return s.db.Close()
}
