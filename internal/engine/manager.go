package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/extract"
	"github.com/BTreeMap/LeavePipe/internal/models"
)

// handleManagerCommand dispatches one stateless administrative command.
// Unrecognized text falls back to the help reply, never an error.
func (e *Engine) handleManagerCommand(ctx context.Context, text string) string {
	cmd := extract.ParseManagerCommand(text)
	slog.Debug("Engine manager command", "action", cmd.Action, "leave_id", cmd.LeaveID)

	switch cmd.Action {
	case extract.ActionApprove:
		return e.approveLeave(ctx, cmd.LeaveID)
	case extract.ActionReject:
		return e.rejectLeave(ctx, cmd.LeaveID, cmd.Reason)
	case extract.ActionAssign:
		return e.assignSubstitute(ctx, cmd.LeaveID, cmd.SubstituteName)
	case extract.ActionStatus:
		if cmd.LeaveID > 0 {
			return e.leaveStatus(cmd.LeaveID)
		}
		return e.statusReport()
	case extract.ActionList:
		return e.listPending()
	default:
		return msgManagerHelp()
	}
}

// approveLeave transitions a request to approved. Approval is gated:
// the request needs a confirmed substitute or an explicit no-substitute
// note before it may be approved.
func (e *Engine) approveLeave(ctx context.Context, id int) string {
	unlock := e.lockRequest(id)
	defer unlock()

	req, err := e.store.GetLeaveRequest(id)
	if err != nil {
		slog.Error("Engine approveLeave lookup failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	if req == nil {
		return msgNotFound(id)
	}
	if req.Status.IsTerminal() {
		return msgAlreadyDecided(req)
	}
	if req.Status != models.LeaveStatusSubstituteConfirmed && req.SubstituteNote == "" {
		return msgApproveBlocked(req)
	}

	if err := e.store.UpdateLeaveStatus(id, models.LeaveStatusApproved, ""); err != nil {
		slog.Error("Engine approveLeave update failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	req.Status = models.LeaveStatusApproved

	e.notifyByName(ctx, req.RequesterName, msgEmployeeApproved(req))
	if sub := e.confirmedSubstitution(id); sub != nil {
		e.notifyByName(ctx, sub.SubstituteName, msgSubstituteApproved(req, sub.SubstituteName))
	}

	slog.Info("Engine leave approved", "id", id, "requester", req.RequesterName)
	return msgApproved(req)
}

// rejectLeave transitions a request to rejected, carrying the
// manager's free-text reason. A substitute who had already confirmed
// is told the assignment is void.
func (e *Engine) rejectLeave(ctx context.Context, id int, reason string) string {
	unlock := e.lockRequest(id)
	defer unlock()

	req, err := e.store.GetLeaveRequest(id)
	if err != nil {
		slog.Error("Engine rejectLeave lookup failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	if req == nil {
		return msgNotFound(id)
	}
	if req.Status.IsTerminal() {
		return msgAlreadyDecided(req)
	}

	confirmed := e.confirmedSubstitution(id)

	if err := e.store.UpdateLeaveStatus(id, models.LeaveStatusRejected, reason); err != nil {
		slog.Error("Engine rejectLeave update failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	req.Status = models.LeaveStatusRejected
	req.RejectionReason = reason

	e.notifyByName(ctx, req.RequesterName, msgEmployeeRejected(req, reason))
	if confirmed != nil {
		e.notifyByName(ctx, confirmed.SubstituteName, msgSubstituteVoid(id))
	}

	slog.Info("Engine leave rejected", "id", id, "requester", req.RequesterName)
	return msgRejected(req, reason)
}

// assignSubstitute creates a fresh pending substitution for the
// request, retiring any earlier pending one so at most one
// substitution per request is awaiting a response.
func (e *Engine) assignSubstitute(ctx context.Context, id int, name string) string {
	unlock := e.lockRequest(id)
	defer unlock()

	req, err := e.store.GetLeaveRequest(id)
	if err != nil {
		slog.Error("Engine assignSubstitute lookup failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	if req == nil {
		return msgNotFound(id)
	}
	if req.Status.IsTerminal() {
		return msgAlreadyDecided(req)
	}

	person, err := e.directory.FindByName(name)
	if err != nil {
		slog.Error("Engine assignSubstitute directory lookup failed", "error", err, "name", name)
		return msgStoreFailure()
	}
	if person == nil {
		return msgAssignUnknownSubstitute(name)
	}
	if strings.EqualFold(person.Name, req.RequesterName) {
		return msgAssignSelf(req.RequesterName)
	}

	// Retire any substitution still awaiting a response; a declined or
	// confirmed one stays in the audit trail untouched.
	subs, err := e.store.ListSubstitutionsByLeave(id)
	if err != nil {
		slog.Error("Engine assignSubstitute substitution listing failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	for _, sub := range subs {
		if sub.Status == models.SubstitutionPending {
			if err := e.store.UpdateSubstitutionStatus(sub.ID, models.SubstitutionDeclined); err != nil {
				slog.Error("Engine assignSubstitute retire failed", "error", err, "substitution_id", sub.ID)
			}
		}
	}

	sub := &models.Substitution{LeaveID: id, SubstituteName: person.Name}
	if err := e.store.CreateSubstitution(sub); err != nil {
		slog.Error("Engine assignSubstitute create failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	if err := e.store.SetLeaveSubstitute(id, person.Name, ""); err != nil {
		slog.Error("Engine assignSubstitute set failed", "error", err, "id", id)
	}
	if err := e.store.UpdateLeaveStatus(id, models.LeaveStatusSubstituteAssigned, ""); err != nil {
		slog.Error("Engine assignSubstitute status update failed", "error", err, "id", id)
	}

	e.notify(ctx, person.Phone, msgSubstituteAssignment(id, req.RequesterName, req.Days))
	e.notifyByName(ctx, req.RequesterName, msgEmployeeSubstituteAssigned(id, person.Name))

	slog.Info("Engine substitute assigned", "id", id, "substitute", person.Name)
	return msgAssigned(person.Name, id)
}

// leaveStatus renders single-request detail including its substitution
// history.
func (e *Engine) leaveStatus(id int) string {
	req, err := e.store.GetLeaveRequest(id)
	if err != nil {
		slog.Error("Engine leaveStatus lookup failed", "error", err, "id", id)
		return msgStoreFailure()
	}
	if req == nil {
		return msgNotFound(id)
	}
	subs, err := e.store.ListSubstitutionsByLeave(id)
	if err != nil {
		slog.Error("Engine leaveStatus substitution listing failed", "error", err, "id", id)
	}
	return msgLeaveStatus(req, subs)
}

// statusReport renders the grouped pending / in-progress / approved /
// rejected summary with totals.
func (e *Engine) statusReport() string {
	requests, err := e.store.ListLeaveRequests()
	if err != nil {
		slog.Error("Engine statusReport listing failed", "error", err)
		return msgStoreFailure()
	}
	return msgStatusReport(requests)
}

// listPending renders all pending requests with their legal commands.
func (e *Engine) listPending() string {
	pending, err := e.store.ListLeaveRequestsByStatus(models.LeaveStatusPending)
	if err != nil {
		slog.Error("Engine listPending failed", "error", err)
		return msgStoreFailure()
	}
	return msgPendingList(pending)
}

// confirmedSubstitution returns the confirmed substitution for a
// request, or nil. Caller holds the request lock where it matters.
func (e *Engine) confirmedSubstitution(leaveID int) *models.Substitution {
	subs, err := e.store.ListSubstitutionsByLeave(leaveID)
	if err != nil {
		slog.Error("Engine confirmedSubstitution listing failed", "error", err, "leave_id", leaveID)
		return nil
	}
	for i := range subs {
		if subs[i].Status == models.SubstitutionConfirmed {
			return &subs[i]
		}
	}
	return nil
}
