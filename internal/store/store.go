// Package store provides storage backends for LeavePipe workflow
// records: leave requests, substitution assignments, and notification
// receipts.
//
// Records are append-only with monotonically increasing ids; status
// mutation is the only supported update and no deletes are exposed.
package store

import (
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// DetectDSNType classifies a DSN as "postgres" or "sqlite3" so callers
// can pick a backend without a separate driver flag.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}

// Store is the workflow record store consumed by the engine and API.
type Store interface {
	// CreateLeaveRequest persists a new request, assigning the next id
	// and the creation timestamp. The request must pass Validate.
	CreateLeaveRequest(r *models.LeaveRequest) error

	// GetLeaveRequest returns the request with the given id, or nil when
	// it does not exist.
	GetLeaveRequest(id int) (*models.LeaveRequest, error)

	// ListLeaveRequests returns all requests in id order.
	ListLeaveRequests() ([]models.LeaveRequest, error)

	// ListLeaveRequestsByStatus returns requests with the given status
	// in id order.
	ListLeaveRequestsByStatus(status models.LeaveStatus) ([]models.LeaveRequest, error)

	// ListLeaveRequestsByRequester returns requests by requester name
	// (case-insensitive) in id order.
	ListLeaveRequestsByRequester(name string) ([]models.LeaveRequest, error)

	// UpdateLeaveStatus transitions a request's status. Terminal
	// statuses also record the decision time; a rejection carries the
	// manager's reason. Returns models.ErrRequestNotFound when absent.
	UpdateLeaveStatus(id int, status models.LeaveStatus, rejectionReason string) error

	// SetLeaveSubstitute records the current substitute name (or the
	// no-substitute note) on a request.
	SetLeaveSubstitute(id int, substituteName, note string) error

	// CreateSubstitution persists a new substitution record, assigning
	// the next id and timestamps.
	CreateSubstitution(s *models.Substitution) error

	// GetSubstitution returns the substitution with the given id, or nil
	// when it does not exist.
	GetSubstitution(id int) (*models.Substitution, error)

	// ListSubstitutionsByLeave returns all substitution records for a
	// request in id order, declined ones included (audit log semantics).
	ListSubstitutionsByLeave(leaveID int) ([]models.Substitution, error)

	// UpdateSubstitutionStatus transitions a substitution's status.
	// Returns models.ErrSubstitutionNotFound when absent.
	UpdateSubstitutionStatus(id int, status models.SubstitutionStatus) error

	// AddReceipt records a notification delivery attempt.
	AddReceipt(r models.Receipt) error

	// GetReceipts returns all recorded delivery attempts.
	GetReceipts() ([]models.Receipt, error)

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite,
	// connection URL for Postgres).
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}
