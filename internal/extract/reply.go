package extract

import (
	"regexp"
	"strconv"
)

// SubstituteReply is a parsed accept/decline response to a substitution
// assignment, always bound to an explicit request id.
type SubstituteReply struct {
	Accept  bool
	LeaveID int
}

var (
	acceptReplyRe  = regexp.MustCompile(`(?i)\b(?:accept|yes|confirm|ok)\b.*?#?(\d+)`)
	declineReplyRe = regexp.MustCompile(`(?i)\b(?:decline|reject|no|cannot|can't)\b.*?#?(\d+)`)
)

// ParseSubstituteReply recognizes "accept #3" / "decline #3" style
// responses. Accept patterns are tried first; ok is false when neither
// matches. Whether the sender is actually the assigned substitute for
// that id is the engine's decision, not this parser's.
func ParseSubstituteReply(text string) (reply SubstituteReply, ok bool) {
	if m := acceptReplyRe.FindStringSubmatch(text); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return SubstituteReply{Accept: true, LeaveID: id}, true
		}
	}
	if m := declineReplyRe.FindStringSubmatch(text); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return SubstituteReply{Accept: false, LeaveID: id}, true
		}
	}
	return SubstituteReply{}, false
}
