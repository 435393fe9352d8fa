package store

import (
	"database/sql"
	"fmt"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nilIfEmpty maps an empty string to a SQL NULL argument.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanLeave reads one leave request row in leaveColumns order.
func scanLeave(sc rowScanner) (models.LeaveRequest, error) {
	var r models.LeaveRequest
	var substituteName, substituteNote, rejectionReason sql.NullString
	var decidedAt sql.NullTime
	err := sc.Scan(&r.ID, &r.RequesterName, &r.Days, &r.Reason, &r.Status,
		&substituteName, &substituteNote, &rejectionReason, &r.CreatedAt, &decidedAt)
	if err != nil {
		return r, err
	}
	r.SubstituteName = substituteName.String
	r.SubstituteNote = substituteNote.String
	r.RejectionReason = rejectionReason.String
	if decidedAt.Valid {
		t := decidedAt.Time
		r.DecidedAt = &t
	}
	return r, nil
}

// scanLeaveRow scans a single-row query, mapping no-rows to nil.
func scanLeaveRow(row *sql.Row) (*models.LeaveRequest, error) {
	r, err := scanLeave(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan leave request: %w", err)
	}
	return &r, nil
}

// scanLeaveRows scans the current row of a multi-row query.
func scanLeaveRows(rows *sql.Rows) (models.LeaveRequest, error) {
	r, err := scanLeave(rows)
	if err != nil {
		return r, fmt.Errorf("failed to scan leave request row: %w", err)
	}
	return r, nil
}
