package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// CommandAction identifies a parsed manager command.
type CommandAction string

const (
	ActionApprove CommandAction = "approve"
	ActionReject  CommandAction = "reject"
	ActionAssign  CommandAction = "assign"
	ActionStatus  CommandAction = "status"
	ActionList    CommandAction = "list"
	ActionHelp    CommandAction = "help"
	ActionUnknown CommandAction = "unknown"
)

// ManagerCommand is the structured form of a manager message.
// LeaveID is 0 when no request id was referenced.
type ManagerCommand struct {
	Action         CommandAction
	LeaveID        int
	SubstituteName string
	Reason         string
}

var (
	leaveIDRe      = regexp.MustCompile(`#?(\d+)`)
	assignRe       = regexp.MustCompile(`assign\s+(.+?)\s+to\s+#?(\d+)`)
	rejectPrefixRe = regexp.MustCompile(`(?i)^\s*(?:reject|deny)\s*#?\d*\s*`)
)

// ParseManagerCommand parses a manager message into a structured
// command. Matching is case-insensitive keyword membership in the same
// order the help text documents; anything unrecognized yields
// ActionUnknown so the engine can fall back to the help reply.
func ParseManagerCommand(text string) ManagerCommand {
	lower := strings.ToLower(strings.TrimSpace(text))

	switch {
	case strings.Contains(lower, "assign"):
		if m := assignRe.FindStringSubmatch(lower); m != nil {
			id, _ := strconv.Atoi(m[2])
			return ManagerCommand{Action: ActionAssign, LeaveID: id, SubstituteName: strings.TrimSpace(m[1])}
		}

	case strings.Contains(lower, "approve"):
		if id, ok := findLeaveID(text); ok {
			return ManagerCommand{Action: ActionApprove, LeaveID: id}
		}

	case strings.Contains(lower, "reject") || strings.Contains(lower, "deny"):
		if id, ok := findLeaveID(text); ok {
			// The reason is stripped from the original text so the
			// manager's casing survives into the stored record.
			reason := strings.TrimSpace(rejectPrefixRe.ReplaceAllString(text, ""))
			return ManagerCommand{Action: ActionReject, LeaveID: id, Reason: reason}
		}

	case strings.Contains(lower, "status") || strings.Contains(lower, "check") || strings.Contains(lower, "info"):
		cmd := ManagerCommand{Action: ActionStatus}
		if id, ok := findLeaveID(text); ok {
			cmd.LeaveID = id
		}
		return cmd

	case strings.Contains(lower, "list") || strings.Contains(lower, "pending") || strings.Contains(lower, "show"):
		return ManagerCommand{Action: ActionList}

	case strings.Contains(lower, "help") || strings.Contains(lower, "commands"):
		return ManagerCommand{Action: ActionHelp}
	}

	return ManagerCommand{Action: ActionUnknown}
}

// IsManagerCommand reports whether a message is command-shaped: it
// carries a manager keyword, or references a request id in a short
// message. Used by routing to decide whether a manager message enters
// command dispatch or the submitter conversation track.
func IsManagerCommand(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	keywords := []string{"approve", "reject", "deny", "status", "list", "pending", "assign", "help", "commands"}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return leaveIDRe.MatchString(text) && len(strings.Fields(text)) <= 5
}

// findLeaveID extracts the first request id reference (optional '#'
// followed by digits) from the message.
func findLeaveID(text string) (int, bool) {
	m := leaveIDRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}
