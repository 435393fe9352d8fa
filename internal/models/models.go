// Package models defines the core data structures for LeavePipe.
//
// It includes the leave-workflow records (requests and substitutions),
// directory people, message receipts/responses, and the shared API
// response envelope used by the HTTP surface.
package models

import (
	"errors"
	"time"
)

// LeaveStatus represents the lifecycle state of a leave request.
type LeaveStatus string

const (
	// LeaveStatusPending indicates the request awaits a manager decision.
	LeaveStatusPending LeaveStatus = "pending"
	// LeaveStatusSubstituteAssigned indicates a substitute was assigned but has not responded.
	LeaveStatusSubstituteAssigned LeaveStatus = "substitute_assigned"
	// LeaveStatusSubstituteConfirmed indicates the assigned substitute accepted.
	LeaveStatusSubstituteConfirmed LeaveStatus = "substitute_confirmed"
	// LeaveStatusSubstituteDeclined indicates the assigned substitute declined.
	LeaveStatusSubstituteDeclined LeaveStatus = "substitute_declined"
	// LeaveStatusApproved is a terminal state set only by an explicit manager decision.
	LeaveStatusApproved LeaveStatus = "approved"
	// LeaveStatusRejected is a terminal state set only by an explicit manager decision.
	LeaveStatusRejected LeaveStatus = "rejected"
)

// IsTerminal reports whether the status permits no further decisions.
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

// SubstitutionStatus represents the state of a substitution assignment.
type SubstitutionStatus string

const (
	// SubstitutionPending indicates the substitute has not yet responded.
	SubstitutionPending SubstitutionStatus = "pending"
	// SubstitutionConfirmed indicates the substitute accepted the assignment.
	SubstitutionConfirmed SubstitutionStatus = "confirmed"
	// SubstitutionDeclined indicates the substitute declined the assignment.
	SubstitutionDeclined SubstitutionStatus = "declined"
)

// Validation constants for workflow records.
const (
	// MaxReasonLength caps the stored leave reason text.
	MaxReasonLength = 500
	// MaxAdvisorySummaryLength caps the advisory text forwarded to the manager.
	MaxAdvisorySummaryLength = 500
	// MaxSubstituteSuggestions caps the candidate list shown during substitute selection.
	MaxSubstituteSuggestions = 5
)

// Error variables for better error handling and testability
var (
	ErrRequestNotFound      = errors.New("leave request not found")
	ErrSubstitutionNotFound = errors.New("substitution not found")
	ErrPersonNotFound       = errors.New("person not found")
	ErrInvalidDayCount      = errors.New("day count must be a positive integer")
	ErrEmptyReason          = errors.New("reason cannot be empty")
	ErrEmptyRequester       = errors.New("requester cannot be empty")
	ErrTerminalStatus       = errors.New("leave request already decided")
	ErrUnauthorized         = errors.New("sender is not authorized for this action")
)

// Person is an immutable directory record for an employee or manager.
type Person struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Department string `json:"department,omitempty"`
	// Advisory-only context fields; the engine never branches on these.
	AvailableLeaves int    `json:"available_leaves,omitempty"`
	PendingWork     string `json:"pending_work,omitempty"`
	RoleCriticality string `json:"role_criticality,omitempty"`
}

// LeaveRequest is an append-only workflow record for one leave application.
type LeaveRequest struct {
	ID              int         `json:"id"`
	RequesterName   string      `json:"requester_name"`
	Days            int         `json:"days"`
	Reason          string      `json:"reason"`
	Status          LeaveStatus `json:"status"`
	SubstituteName  string      `json:"substitute_name,omitempty"`
	SubstituteNote  string      `json:"substitute_note,omitempty"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	DecidedAt       *time.Time  `json:"decided_at,omitempty"`
}

// Validate checks the creation-time invariants of a leave request.
func (r *LeaveRequest) Validate() error {
	if r.RequesterName == "" {
		return ErrEmptyRequester
	}
	if r.Days <= 0 {
		return ErrInvalidDayCount
	}
	if r.Reason == "" {
		return ErrEmptyReason
	}
	return nil
}

// Substitution records one substitute assignment for a leave request.
// A request may accumulate several over its lifetime; declined records
// are retained and a fresh assignment creates a new row.
type Substitution struct {
	ID             int                `json:"id"`
	LeaveID        int                `json:"leave_id"`
	SubstituteName string             `json:"substitute_name"`
	Status         SubstitutionStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// MessageStatus represents the delivery status of a message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message was sent.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the transport reported delivery.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the recipient read the message.
	MessageStatusRead MessageStatus = "read"
	// MessageStatusFailed indicates the message failed to send.
	MessageStatusFailed MessageStatus = "failed"
)

// Receipt records a notification delivery attempt.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response represents an incoming message from a sender.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// Error creates an error API response with the given message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
