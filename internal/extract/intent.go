// Package extract provides pure text-analysis functions for inbound
// messages: intent classification, day-count/reason/substitute-name
// extraction, and manager command parsing.
//
// Every function is stateless and returns "no result" rather than an
// error when nothing matches; the conversation engine decides whether a
// missing value blocks a transition.
package extract

import (
	"regexp"
	"strings"
)

// Intent classifies what an inbound message is asking for.
type Intent string

const (
	IntentLeaveRequest Intent = "leave_request"
	IntentApprove      Intent = "approve"
	IntentReject       Intent = "reject"
	IntentConfirm      Intent = "confirm"
	IntentDecline      Intent = "decline"
	IntentStatus       Intent = "status"
	IntentList         Intent = "list"
	IntentAssign       Intent = "assign"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// leaveKeywords flag leave intent on simple substring membership.
var leaveKeywords = []string{
	"leave", "apply for leave", "need leave", "want leave",
	"sick leave", "casual leave", "emergency leave",
	"vacation", "time off", "day off", "days off", "absent",
}

// leaveTemplates are linguistic patterns that flag leave intent even
// without a bare keyword hit.
var leaveTemplates = []*regexp.Regexp{
	regexp.MustCompile(`\bi\s+need\s+.*\b(leave|off)\b`),
	regexp.MustCompile(`\bcan\s+i\s+.*\bleave\b`),
	regexp.MustCompile(`\bi\s+won'?t\s+be\s+.*\bavailable\b`),
	regexp.MustCompile(`\bi\s+will\s+not\s+be\s+.*\bavailable\b`),
}

// intentRule pairs an intent with its keyword set. Rules are evaluated
// in order; the first match wins.
type intentRule struct {
	intent   Intent
	keywords []string
}

// administrativeRules are checked before leave intent so that short
// command-shaped messages from managers are not swallowed by the
// leave-keyword net.
var administrativeRules = []intentRule{
	{IntentAssign, []string{"assign"}},
	{IntentApprove, []string{"approve"}},
	{IntentReject, []string{"reject", "deny"}},
	{IntentDecline, []string{"decline", "cannot", "can't"}},
	{IntentConfirm, []string{"accept", "confirm"}},
	{IntentStatus, []string{"status", "check", "info"}},
	{IntentList, []string{"list", "pending", "show"}},
	{IntentHelp, []string{"help", "commands"}},
}

// ClassifyIntent classifies a free-text message. Administrative
// categories win over leave intent; leave intent is a weighted union of
// keyword membership and linguistic templates.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return IntentUnknown
	}

	for _, rule := range administrativeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}

	if HasLeaveIntent(lower) {
		return IntentLeaveRequest
	}
	return IntentUnknown
}

// HasLeaveIntent reports whether the message exhibits leave-application
// intent. Any keyword or template match flags it.
func HasLeaveIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range leaveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, re := range leaveTemplates {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}
