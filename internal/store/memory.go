// Package store provides storage backends for LeavePipe.
//
// This file implements the in-memory store used for tests and
// DSN-less deployments.
package store

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// InMemoryStore is a process-lifetime Store over guarded maps with
// monotonic id counters scoped per collection.
type InMemoryStore struct {
	mu            sync.RWMutex
	requests      map[int]models.LeaveRequest
	substitutions map[int]models.Substitution
	receipts      []models.Receipt
	leaveCounter  int
	subCounter    int
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		requests:      make(map[int]models.LeaveRequest),
		substitutions: make(map[int]models.Substitution),
	}
}

// CreateLeaveRequest persists a new request with the next id.
func (s *InMemoryStore) CreateLeaveRequest(r *models.LeaveRequest) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveCounter++
	r.ID = s.leaveCounter
	if r.Status == "" {
		r.Status = models.LeaveStatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.requests[r.ID] = *r
	slog.Debug("InMemoryStore CreateLeaveRequest", "id", r.ID, "requester", r.RequesterName)
	return nil
}

// GetLeaveRequest returns the request with the given id, or nil.
func (s *InMemoryStore) GetLeaveRequest(id int) (*models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ListLeaveRequests returns all requests in id order.
func (s *InMemoryStore) ListLeaveRequests() ([]models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRequests(func(models.LeaveRequest) bool { return true }), nil
}

// ListLeaveRequestsByStatus returns requests with the given status in id order.
func (s *InMemoryStore) ListLeaveRequestsByStatus(status models.LeaveStatus) ([]models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRequests(func(r models.LeaveRequest) bool { return r.Status == status }), nil
}

// ListLeaveRequestsByRequester returns requests by requester name in id order.
func (s *InMemoryStore) ListLeaveRequestsByRequester(name string) ([]models.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectRequests(func(r models.LeaveRequest) bool {
		return strings.EqualFold(r.RequesterName, name)
	}), nil
}

// collectRequests gathers matching requests in id order. Caller holds the lock.
func (s *InMemoryStore) collectRequests(match func(models.LeaveRequest) bool) []models.LeaveRequest {
	var out []models.LeaveRequest
	for id := 1; id <= s.leaveCounter; id++ {
		if r, ok := s.requests[id]; ok && match(r) {
			out = append(out, r)
		}
	}
	return out
}

// UpdateLeaveStatus transitions a request's status.
func (s *InMemoryStore) UpdateLeaveStatus(id int, status models.LeaveStatus, rejectionReason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return models.ErrRequestNotFound
	}
	r.Status = status
	if rejectionReason != "" {
		r.RejectionReason = rejectionReason
	}
	if status.IsTerminal() {
		now := time.Now()
		r.DecidedAt = &now
	}
	s.requests[id] = r
	slog.Debug("InMemoryStore UpdateLeaveStatus", "id", id, "status", status)
	return nil
}

// SetLeaveSubstitute records the current substitute name or note on a request.
func (s *InMemoryStore) SetLeaveSubstitute(id int, substituteName, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return models.ErrRequestNotFound
	}
	r.SubstituteName = substituteName
	r.SubstituteNote = note
	s.requests[id] = r
	return nil
}

// CreateSubstitution persists a new substitution record with the next id.
func (s *InMemoryStore) CreateSubstitution(sub *models.Substitution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subCounter++
	sub.ID = s.subCounter
	if sub.Status == "" {
		sub.Status = models.SubstitutionPending
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	s.substitutions[sub.ID] = *sub
	slog.Debug("InMemoryStore CreateSubstitution", "id", sub.ID, "leave_id", sub.LeaveID, "substitute", sub.SubstituteName)
	return nil
}

// GetSubstitution returns the substitution with the given id, or nil.
func (s *InMemoryStore) GetSubstitution(id int) (*models.Substitution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.substitutions[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

// ListSubstitutionsByLeave returns all substitutions for a request in id order.
func (s *InMemoryStore) ListSubstitutionsByLeave(leaveID int) ([]models.Substitution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Substitution
	for id := 1; id <= s.subCounter; id++ {
		if sub, ok := s.substitutions[id]; ok && sub.LeaveID == leaveID {
			out = append(out, sub)
		}
	}
	return out, nil
}

// UpdateSubstitutionStatus transitions a substitution's status.
func (s *InMemoryStore) UpdateSubstitutionStatus(id int, status models.SubstitutionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.substitutions[id]
	if !ok {
		return models.ErrSubstitutionNotFound
	}
	sub.Status = status
	sub.UpdatedAt = time.Now()
	s.substitutions[id] = sub
	slog.Debug("InMemoryStore UpdateSubstitutionStatus", "id", id, "status", status)
	return nil
}

// AddReceipt records a notification delivery attempt.
func (s *InMemoryStore) AddReceipt(r models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

// GetReceipts returns all recorded delivery attempts.
func (s *InMemoryStore) GetReceipts() ([]models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
