package engine

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// Reply texts for every track. The administrative command phrasings
// documented in msgManagerHelp are the wire contract with end users;
// parsing in the extract package must stay in sync with them.

func msgUnknownSender() string {
	return "Sorry, I couldn't find your number in the employee directory. Please contact HR to get registered."
}

func msgSessionReset(name string) string {
	return fmt.Sprintf("Hi %s! Session reset. How can I help you today?", name)
}

func msgUsage(name string) string {
	return fmt.Sprintf("Hi %s! I can help you apply for leave. Please tell me:\n"+
		"• How many days do you need?\n"+
		"• What's the reason?\n\n"+
		"Example: 'I need 3 days leave for family emergency'\n\n"+
		"(Type 'reset' to start over)", name)
}

func msgMissingIntro(name string, missing []string) string {
	return fmt.Sprintf("Hi %s! I can help you apply for leave.\n\nI need:\n• %s\n\nPlease provide the missing details.",
		name, strings.Join(missing, "\n• "))
}

func msgStillMissing(missing []string) string {
	return fmt.Sprintf("I still need:\n• %s\n\nPlease provide the missing information.",
		strings.Join(missing, "\n• "))
}

func msgSummary(sess *models.Session) string {
	dept := sess.Person.Department
	if dept == "" {
		dept = "N/A"
	}
	return fmt.Sprintf("📋 Leave Application Summary:\n\n"+
		"👤 Employee: %s\n"+
		"📅 Days: %d days\n"+
		"📝 Reason: %s\n"+
		"🏢 Department: %s\n\n"+
		"Please reply 'YES' to confirm or 'NO' to cancel.",
		sess.Person.Name, sess.Draft.Days, sess.Draft.Reason, dept)
}

func msgConfirmPrompt() string {
	return "Please reply with 'yes' to confirm or 'no' to cancel the leave application."
}

func msgCancelled() string {
	return "Leave application cancelled. Feel free to start again anytime!"
}

func msgSubstitutePrompt(candidates []models.Person) string {
	var b strings.Builder
	b.WriteString("🔄 Who should cover for you while you're away?\n\n")
	if len(candidates) > 0 {
		b.WriteString("Suggestions:\n")
		for _, p := range candidates {
			dept := p.Department
			if dept == "" {
				dept = "N/A"
			}
			fmt.Fprintf(&b, "• %s (Dept: %s)\n", p.Name, dept)
		}
		b.WriteString("\n")
	}
	b.WriteString("Reply with a name, or 'skip' if no substitute is needed (manager decides).")
	return b.String()
}

func msgSubstituteRePrompt() string {
	return "I didn't catch a name. Please reply with the substitute's name, or 'skip' if no substitute is needed."
}

func msgSubstituteNotFound(name string, candidates []models.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ I couldn't find %q in the employee directory.\n", name)
	if len(candidates) > 0 {
		b.WriteString("\nDid you mean one of:\n")
		for _, p := range candidates {
			fmt.Fprintf(&b, "• %s\n", p.Name)
		}
	}
	b.WriteString("\nPlease try another name, or 'skip' if no substitute is needed.")
	return b.String()
}

func msgSubmitted(req *models.LeaveRequest) string {
	var b strings.Builder
	b.WriteString("✅ Leave Request Submitted Successfully!\n\n")
	fmt.Fprintf(&b, "📋 Request ID: #%d\n", req.ID)
	fmt.Fprintf(&b, "📅 Days: %d days\n", req.Days)
	fmt.Fprintf(&b, "📝 Reason: %s\n", req.Reason)
	if req.SubstituteName != "" {
		fmt.Fprintf(&b, "🔄 Substitute: %s (asked to confirm)\n", req.SubstituteName)
	}
	b.WriteString("\nYour manager has been notified and will review your request. You'll receive an update once it's processed.\n\nThank you! 🙏")
	return b.String()
}

func msgSubmitFailed() string {
	return "❌ Error submitting leave request. Please try again or contact HR directly."
}

func msgManagerNewRequest(req *models.LeaveRequest, person models.Person, summary string) string {
	dept := person.Department
	if dept == "" {
		dept = "N/A"
	}
	substitute := "none (manager decides)"
	if req.SubstituteName != "" {
		substitute = fmt.Sprintf("%s (pending confirmation)", req.SubstituteName)
	}
	return fmt.Sprintf("🔔 New Leave Request #%d\n\n"+
		"👤 Employee: %s\n"+
		"📞 Phone: %s\n"+
		"🏢 Department: %s\n"+
		"📅 Days Requested: %d days\n"+
		"📝 Reason: %s\n"+
		"🔄 Substitute: %s\n\n"+
		"🤖 AI Analysis Summary:\n%s\n\n"+
		"Commands:\n"+
		"• \"Approve #%d\" - Approve this request\n"+
		"• \"Reject #%d [reason]\" - Reject with reason\n"+
		"• \"Assign [name] to #%d\" - Assign a substitute\n"+
		"• \"Status #%d\" - Check status",
		req.ID, person.Name, person.Phone, dept, req.Days, req.Reason, substitute,
		summary, req.ID, req.ID, req.ID, req.ID)
}

func msgSubstituteAssignment(leaveID int, requester string, days int) string {
	return fmt.Sprintf("🔔 Substitute Assignment\n\n"+
		"You have been asked to cover for %s during their %d-day leave (request #%d).\n\n"+
		"Please confirm your availability by replying:\n"+
		"• \"Accept #%d\" to confirm\n"+
		"• \"Decline #%d\" if not available\n\n"+
		"Thank you!", requester, days, leaveID, leaveID, leaveID)
}

func msgNotFound(id int) string {
	return fmt.Sprintf("❌ Leave request #%d not found.", id)
}

func msgStoreFailure() string {
	return "❌ Something went wrong on our side. Please try again."
}

func msgAlreadyDecided(req *models.LeaveRequest) string {
	return fmt.Sprintf("Leave #%d has already been %s; no further changes are possible.", req.ID, req.Status)
}

func msgApproveBlocked(req *models.LeaveRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏳ Leave #%d can't be approved yet: ", req.ID)
	if req.SubstituteName != "" {
		fmt.Fprintf(&b, "%s has not confirmed the substitution.", req.SubstituteName)
	} else {
		b.WriteString("no substitute is arranged.")
	}
	fmt.Fprintf(&b, "\n\nAssign one with \"Assign [name] to #%d\" and wait for their confirmation, or wait for the pending response.", req.ID)
	return b.String()
}

func msgApproved(req *models.LeaveRequest) string {
	return fmt.Sprintf("✅ Leave #%d APPROVED successfully!\n\n"+
		"👤 Employee: %s\n"+
		"📅 Days: %d days\n\n"+
		"Employee has been notified.", req.ID, req.RequesterName, req.Days)
}

func msgEmployeeApproved(req *models.LeaveRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Great News! Your leave request #%d has been APPROVED!\n\n", req.ID)
	fmt.Fprintf(&b, "📅 Days: %d days\n", req.Days)
	fmt.Fprintf(&b, "📝 Reason: %s\n\n", req.Reason)
	if req.SubstituteName != "" {
		fmt.Fprintf(&b, "🔄 %s will cover for you.\n\n", req.SubstituteName)
	}
	b.WriteString("Enjoy your time off! 🌟")
	return b.String()
}

func msgSubstituteApproved(req *models.LeaveRequest, substitute string) string {
	return fmt.Sprintf("✅ Leave #%d has been approved. Your substitution for %s is confirmed — thank you, %s!",
		req.ID, req.RequesterName, substitute)
}

func msgRejected(req *models.LeaveRequest, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ Leave #%d REJECTED\n\n", req.ID)
	fmt.Fprintf(&b, "👤 Employee: %s has been notified.\n", req.RequesterName)
	if reason != "" {
		fmt.Fprintf(&b, "📝 Rejection reason: %s\n", reason)
	}
	b.WriteString("\nThe employee can resubmit a new request if needed.")
	return b.String()
}

func msgEmployeeRejected(req *models.LeaveRequest, reason string) string {
	var b strings.Builder
	b.WriteString("❌ Leave Request Update\n\n")
	fmt.Fprintf(&b, "Your leave request #%d has been reviewed and unfortunately cannot be approved at this time.\n\n", req.ID)
	fmt.Fprintf(&b, "📅 Requested: %d days\n", req.Days)
	fmt.Fprintf(&b, "📝 Reason: %s\n", req.Reason)
	if reason != "" {
		fmt.Fprintf(&b, "\n💬 Manager's feedback: %s\n", reason)
	}
	b.WriteString("\nPlease contact your manager directly to discuss alternative arrangements or resubmit with different dates.")
	return b.String()
}

func msgSubstituteVoid(leaveID int) string {
	return fmt.Sprintf("ℹ️ Leave request #%d was rejected, so your substitution assignment is no longer needed. Thanks for being available!", leaveID)
}

func msgAssignUnknownSubstitute(name string) string {
	return fmt.Sprintf("❌ Substitute %q not found in the employee directory.", name)
}

func msgAssignSelf(name string) string {
	return fmt.Sprintf("❌ %s can't be their own substitute. Please pick someone else.", name)
}

func msgAssigned(name string, leaveID int) string {
	return fmt.Sprintf("✅ Substitute Assigned Successfully!\n\n"+
		"👤 Substitute: %s\n"+
		"📋 Leave ID: #%d\n\n"+
		"The substitute has been notified and will confirm their availability.", name, leaveID)
}

func msgEmployeeSubstituteAssigned(leaveID int, name string) string {
	return fmt.Sprintf("🔄 Update on leave request #%d: %s has been asked to cover for you. You'll hear back once they confirm.", leaveID, name)
}

func msgLeaveStatus(req *models.LeaveRequest, subs []models.Substitution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Leave Request #%d Status\n\n", req.ID)
	fmt.Fprintf(&b, "👤 Employee: %s\n", req.RequesterName)
	fmt.Fprintf(&b, "📅 Days: %d days\n", req.Days)
	fmt.Fprintf(&b, "📝 Reason: %s\n", req.Reason)
	fmt.Fprintf(&b, "🔄 Status: %s", strings.ToUpper(string(req.Status)))
	if req.SubstituteNote != "" {
		fmt.Fprintf(&b, "\n🗒 Note: %s", req.SubstituteNote)
	}
	if req.RejectionReason != "" {
		fmt.Fprintf(&b, "\n💬 Manager's feedback: %s", req.RejectionReason)
	}
	if len(subs) > 0 {
		b.WriteString("\n\n🔄 Substitutions:")
		for _, sub := range subs {
			fmt.Fprintf(&b, "\n• %s - %s", sub.SubstituteName, strings.ToUpper(string(sub.Status)))
		}
	}
	return b.String()
}

func msgStatusReport(requests []models.LeaveRequest) string {
	if len(requests) == 0 {
		return "📋 No leave requests on record yet."
	}

	groups := map[string][]models.LeaveRequest{}
	for _, r := range requests {
		groups[statusGroup(r.Status)] = append(groups[statusGroup(r.Status)], r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Leave Requests Overview (%d total)\n", len(requests))
	for _, group := range []string{"Pending", "In Progress", "Approved", "Rejected"} {
		rs := groups[group]
		if len(rs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", group, len(rs))
		for _, r := range rs {
			fmt.Fprintf(&b, "• #%d %s - %d days - %s\n", r.ID, r.RequesterName, r.Days, r.Reason)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// statusGroup buckets a status for the grouped report.
func statusGroup(s models.LeaveStatus) string {
	switch s {
	case models.LeaveStatusPending:
		return "Pending"
	case models.LeaveStatusApproved:
		return "Approved"
	case models.LeaveStatusRejected:
		return "Rejected"
	default:
		return "In Progress"
	}
}

func msgPendingList(pending []models.LeaveRequest) string {
	if len(pending) == 0 {
		return "📋 No pending leave requests at the moment."
	}
	var b strings.Builder
	b.WriteString("📋 Pending Leave Requests:\n\n")
	for _, r := range pending {
		fmt.Fprintf(&b, "#%d - %s\n", r.ID, r.RequesterName)
		fmt.Fprintf(&b, "📅 %d days\n", r.Days)
		fmt.Fprintf(&b, "📝 %s\n", r.Reason)
		fmt.Fprintf(&b, "Commands: 'Approve #%d' or 'Reject #%d [reason]'\n\n", r.ID, r.ID)
	}
	return strings.TrimSpace(b.String())
}

func msgManagerHelp() string {
	return strings.TrimSpace(`
🤖 Manager Commands Help

📋 Leave Management:
• "List" - Show pending requests
• "Approve #123" - Approve leave request
• "Reject #123 [reason]" - Reject with reason
• "Status #123" - Check leave status
• "Status" - Overview of all requests

🔄 Substitute Assignment:
• "Assign [name] to #123" - Assign substitute

📞 Examples:
• "List"
• "Approve #1"
• "Reject #1 Not enough coverage"
• "Assign Priya Sharma to #1"

You can also apply for leave as an employee by saying:
"I need 3 days leave for..."`)
}

func msgNotAssigned(actual string, leaveID int) string {
	return fmt.Sprintf("❌ You're not the assigned substitute for leave #%d — %s is. No changes were made.", leaveID, actual)
}

func msgSubstituteAccepted(leaveID int) string {
	return fmt.Sprintf("✅ Thanks for confirming! Your substitution for leave #%d is recorded. The manager will make the final decision.", leaveID)
}

func msgSubstituteDeclineAck(leaveID int) string {
	return fmt.Sprintf("👍 Noted — you've declined the substitution for leave #%d. The manager will arrange an alternative.", leaveID)
}

func msgManagerSubstituteConfirmed(req *models.LeaveRequest, substitute string) string {
	return fmt.Sprintf("✅ Substitute Confirmed for Leave #%d\n\n"+
		"👤 Employee: %s\n"+
		"🔄 Substitute: %s has accepted.\n\n"+
		"Ready for your decision:\n"+
		"• \"Approve #%d\"\n"+
		"• \"Reject #%d [reason]\"",
		req.ID, req.RequesterName, substitute, req.ID, req.ID)
}

func msgEmployeeSubstituteConfirmed(leaveID int, substitute string) string {
	return fmt.Sprintf("✅ Good news! %s confirmed they'll cover for you (leave #%d). Your manager will now make the final decision.", substitute, leaveID)
}

func msgManagerSubstituteDeclined(req *models.LeaveRequest, substitute string, alternatives []models.Person) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Substitute Declined for Leave #%d\n\n", req.ID)
	fmt.Fprintf(&b, "👤 Employee: %s\n", req.RequesterName)
	fmt.Fprintf(&b, "🔄 %s is not available.\n", substitute)
	if len(alternatives) > 0 {
		b.WriteString("\nAlternative substitutes:\n")
		for _, p := range alternatives {
			fmt.Fprintf(&b, "• %s\n", p.Name)
		}
	}
	fmt.Fprintf(&b, "\nTo assign: \"Assign [name] to #%d\"", req.ID)
	return b.String()
}

func msgEmployeeSubstituteDeclined(leaveID int, substitute string) string {
	return fmt.Sprintf("⚠️ Update on leave request #%d: %s isn't available to cover for you. Your manager is arranging an alternative.", leaveID, substitute)
}
