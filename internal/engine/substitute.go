package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/extract"
	"github.com/BTreeMap/LeavePipe/internal/models"
)

// handleSubstituteReply resolves an accept/decline response against
// the substitution awaiting a response for the referenced request.
// Returns handled=false when no such assignment exists, so routing
// falls through to the manager/submitter tracks.
func (e *Engine) handleSubstituteReply(ctx context.Context, from string, reply extract.SubstituteReply) (handled bool, response string) {
	unlock := e.lockRequest(reply.LeaveID)
	defer unlock()

	subs, err := e.store.ListSubstitutionsByLeave(reply.LeaveID)
	if err != nil {
		slog.Error("Engine substitute reply listing failed", "error", err, "leave_id", reply.LeaveID)
		return true, msgStoreFailure()
	}

	var pending *models.Substitution
	for i := range subs {
		if subs[i].Status == models.SubstitutionPending {
			pending = &subs[i]
		}
	}
	if pending == nil {
		return false, ""
	}

	person, err := e.directory.FindByPhone(from)
	if err != nil {
		slog.Error("Engine substitute reply sender lookup failed", "error", err)
		return true, msgStoreFailure()
	}
	if person == nil || !strings.EqualFold(person.Name, pending.SubstituteName) {
		slog.Debug("Engine substitute reply from unassigned sender", "leave_id", reply.LeaveID)
		return true, msgNotAssigned(pending.SubstituteName, reply.LeaveID)
	}

	req, err := e.store.GetLeaveRequest(reply.LeaveID)
	if err != nil || req == nil {
		slog.Error("Engine substitute reply request lookup failed", "error", err, "leave_id", reply.LeaveID)
		return true, msgStoreFailure()
	}

	if reply.Accept {
		return true, e.acceptSubstitution(ctx, req, pending)
	}
	return true, e.declineSubstitution(ctx, req, pending)
}

// acceptSubstitution confirms the assignment and forwards the request
// to the manager for the final decision.
func (e *Engine) acceptSubstitution(ctx context.Context, req *models.LeaveRequest, sub *models.Substitution) string {
	if err := e.store.UpdateSubstitutionStatus(sub.ID, models.SubstitutionConfirmed); err != nil {
		slog.Error("Engine acceptSubstitution update failed", "error", err, "substitution_id", sub.ID)
		return msgStoreFailure()
	}
	if !req.Status.IsTerminal() {
		if err := e.store.UpdateLeaveStatus(req.ID, models.LeaveStatusSubstituteConfirmed, ""); err != nil {
			slog.Error("Engine acceptSubstitution leave update failed", "error", err, "id", req.ID)
		}
	}

	e.notify(ctx, e.manager.Phone(), msgManagerSubstituteConfirmed(req, sub.SubstituteName))
	e.notifyByName(ctx, req.RequesterName, msgEmployeeSubstituteConfirmed(req.ID, sub.SubstituteName))

	slog.Info("Engine substitution confirmed", "leave_id", req.ID, "substitute", sub.SubstituteName)
	return msgSubstituteAccepted(req.ID)
}

// declineSubstitution records the decline and prompts the manager to
// pick an alternative.
func (e *Engine) declineSubstitution(ctx context.Context, req *models.LeaveRequest, sub *models.Substitution) string {
	if err := e.store.UpdateSubstitutionStatus(sub.ID, models.SubstitutionDeclined); err != nil {
		slog.Error("Engine declineSubstitution update failed", "error", err, "substitution_id", sub.ID)
		return msgStoreFailure()
	}
	if !req.Status.IsTerminal() {
		if err := e.store.UpdateLeaveStatus(req.ID, models.LeaveStatusSubstituteDeclined, ""); err != nil {
			slog.Error("Engine declineSubstitution leave update failed", "error", err, "id", req.ID)
		}
	}

	alternatives, err := e.directory.ListOthers(req.RequesterName, models.MaxSubstituteSuggestions)
	if err != nil {
		slog.Error("Engine declineSubstitution alternative listing failed", "error", err)
	}
	filtered := alternatives[:0]
	for _, p := range alternatives {
		if !strings.EqualFold(p.Name, sub.SubstituteName) {
			filtered = append(filtered, p)
		}
	}

	e.notify(ctx, e.manager.Phone(), msgManagerSubstituteDeclined(req, sub.SubstituteName, filtered))
	e.notifyByName(ctx, req.RequesterName, msgEmployeeSubstituteDeclined(req.ID, sub.SubstituteName))

	slog.Info("Engine substitution declined", "leave_id", req.ID, "substitute", sub.SubstituteName)
	return msgSubstituteDeclineAck(req.ID)
}
