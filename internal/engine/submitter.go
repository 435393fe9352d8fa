package engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/extract"
	"github.com/BTreeMap/LeavePipe/internal/models"
)

// resetTokens destroy the session from any state.
var resetTokens = map[string]bool{
	"reset":   true,
	"restart": true,
	"clear":   true,
}

// affirmTokens advance the confirming state.
var affirmTokens = map[string]bool{
	"yes":     true,
	"y":       true,
	"confirm": true,
	"ok":      true,
	"proceed": true,
}

// negativeTokens cancel from the confirming state.
var negativeTokens = map[string]bool{
	"no":     true,
	"n":      true,
	"cancel": true,
}

// skipTokens record a no-substitute note instead of a named substitute.
var skipTokens = map[string]bool{
	"skip":                 true,
	"no substitute":        true,
	"no substitute needed": true,
	"none":                 true,
	"manager decides":      true,
	"not needed":           true,
	"no coverage needed":   true,
}

// noSubstituteNote is recorded on a request submitted without a
// substitute; it also satisfies the approval gate.
const noSubstituteNote = "No substitute needed - manager decides"

// handleSubmitterMessage advances the per-sender state machine by one
// inbound message and returns the reply.
func (e *Engine) handleSubmitterMessage(ctx context.Context, sess *models.Session, text string) string {
	lower := strings.ToLower(text)
	if resetTokens[lower] {
		e.sessions.Delete(sess.Phone)
		return msgSessionReset(sess.Person.Name)
	}

	slog.Debug("Engine submitter message", "state", sess.State, "requester", sess.Person.Name)

	switch sess.State {
	case models.StateInitial:
		return e.submitterInitial(sess, text)
	case models.StateCollectingInfo:
		return e.submitterCollecting(sess, text)
	case models.StateConfirming:
		return e.submitterConfirming(lower, sess)
	case models.StateSelectingSubstitute:
		return e.submitterSelecting(ctx, sess, text, lower)
	}

	// Unknown state means a corrupted session; start over.
	e.sessions.Delete(sess.Phone)
	return msgUsage(sess.Person.Name)
}

func (e *Engine) submitterInitial(sess *models.Session, text string) string {
	if !extract.HasLeaveIntent(text) {
		e.sessions.Save(sess)
		return msgUsage(sess.Person.Name)
	}

	mergeDraft(&sess.Draft, text)
	if sess.Draft.Complete() {
		sess.State = models.StateConfirming
		e.sessions.Save(sess)
		return msgSummary(sess)
	}

	sess.State = models.StateCollectingInfo
	e.sessions.Save(sess)
	return msgMissingIntro(sess.Person.Name, sess.Draft.MissingFields())
}

func (e *Engine) submitterCollecting(sess *models.Session, text string) string {
	mergeDraft(&sess.Draft, text)
	if sess.Draft.Complete() {
		sess.State = models.StateConfirming
		e.sessions.Save(sess)
		return msgSummary(sess)
	}
	e.sessions.Save(sess)
	return msgStillMissing(sess.Draft.MissingFields())
}

func (e *Engine) submitterConfirming(lower string, sess *models.Session) string {
	switch {
	case affirmTokens[lower]:
		sess.State = models.StateSelectingSubstitute
		e.sessions.Save(sess)
		candidates, err := e.directory.ListOthers(sess.Person.Name, models.MaxSubstituteSuggestions)
		if err != nil {
			slog.Error("Engine substitute suggestion listing failed", "error", err)
		}
		return msgSubstitutePrompt(candidates)
	case negativeTokens[lower]:
		e.sessions.Delete(sess.Phone)
		return msgCancelled()
	default:
		return msgConfirmPrompt()
	}
}

func (e *Engine) submitterSelecting(ctx context.Context, sess *models.Session, text, lower string) string {
	if skipTokens[lower] {
		return e.submitRequest(ctx, sess, nil, noSubstituteNote)
	}

	name, ok := extract.ExtractSubstituteName(text)
	if !ok {
		return msgSubstituteRePrompt()
	}

	person, err := e.directory.FindByName(name)
	if err != nil {
		slog.Error("Engine substitute lookup failed", "error", err, "name", name)
	}
	if person == nil || strings.EqualFold(person.Name, sess.Person.Name) {
		candidates, listErr := e.directory.ListOthers(sess.Person.Name, models.MaxSubstituteSuggestions)
		if listErr != nil {
			slog.Error("Engine substitute suggestion listing failed", "error", listErr)
		}
		return msgSubstituteNotFound(name, candidates)
	}

	return e.submitRequest(ctx, sess, person, "")
}

// mergeDraft folds newly extracted day-count and reason into the
// draft. A freshly extracted value overwrites a previous one; absence
// never clears anything.
func mergeDraft(d *models.LeaveDraft, text string) {
	if days, ok := extract.ExtractDayCount(text); ok {
		d.Days = days
	}
	if reason, ok := extract.ExtractReason(text); ok {
		d.Reason = reason
	}
}

// submitRequest fires the request-creation side effects exactly once:
// persist the request (and substitution, when a substitute was
// chosen), run the advisory analysis, notify the manager and the
// substitute, and destroy the session.
func (e *Engine) submitRequest(ctx context.Context, sess *models.Session, substitute *models.Person, note string) string {
	req := &models.LeaveRequest{
		RequesterName:  sess.Person.Name,
		Days:           sess.Draft.Days,
		Reason:         sess.Draft.Reason,
		SubstituteNote: note,
	}
	if substitute != nil {
		req.SubstituteName = substitute.Name
		req.Status = models.LeaveStatusSubstituteAssigned
	}

	if err := e.store.CreateLeaveRequest(req); err != nil {
		slog.Error("Engine submitRequest create failed", "error", err, "requester", sess.Person.Name)
		return msgSubmitFailed()
	}

	if substitute != nil {
		sub := &models.Substitution{LeaveID: req.ID, SubstituteName: substitute.Name}
		if err := e.store.CreateSubstitution(sub); err != nil {
			slog.Error("Engine submitRequest substitution create failed", "error", err, "leave_id", req.ID)
		} else {
			e.notify(ctx, substitute.Phone, msgSubstituteAssignment(req.ID, sess.Person.Name, req.Days))
		}
	}

	summary := e.advisorySummary(ctx, req, sess.Person)
	e.notify(ctx, e.manager.Phone(), msgManagerNewRequest(req, sess.Person, summary))

	e.sessions.Delete(sess.Phone)
	slog.Info("Engine leave request submitted", "id", req.ID, "requester", req.RequesterName, "days", req.Days)
	return msgSubmitted(req)
}
