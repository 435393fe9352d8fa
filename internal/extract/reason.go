package extract

import (
	"regexp"
	"strings"
)

// Candidates shorter than this are rejected as noise.
const minReasonLength = 3

// reasonStopwords are candidates that carry no information on their own.
var reasonStopwords = map[string]bool{
	"it": true, "this": true, "that": true, "some": true, "the": true,
}

// reasonRule is one extraction template. Rules run in order and the
// first accepted candidate wins; specific templates come first so that
// the generic catch-alls at the tail cannot shadow them.
type reasonRule struct {
	name string
	re   *regexp.Regexp
	// group is the submatch index holding the candidate reason.
	group int
}

var reasonRules = []reasonRule{
	// Trailing clause after a connector word.
	{"for-clause", regexp.MustCompile(`\bfor\s+(.+?)(?:\.|$|\bbecause\b|\bdue to\b|\bsince\b)`), 1},
	{"because-clause", regexp.MustCompile(`\bbecause\s+(.+?)(?:\.|$|\bfor\b|\bdue to\b)`), 1},
	{"due-to-clause", regexp.MustCompile(`\bdue to\s+(.+?)(?:\.|$|\bbecause\b|\bfor\b)`), 1},
	{"since-clause", regexp.MustCompile(`\bsince\s+(.+?)(?:\.|$|\bbecause\b|\bfor\b)`), 1},
	{"as-clause", regexp.MustCompile(`\bas\s+(.+?)(?:\.|$|\bbecause\b|\bfor\b)`), 1},
	{"to-clause", regexp.MustCompile(`\bto\s+(.+?)(?:\.|$|\bbecause\b|\bfor\b|\bdue to\b)`), 1},

	// Explicit labels.
	{"reason-label", regexp.MustCompile(`\breason:?\s*(.+?)(?:\.|$)`), 1},
	{"purpose-label", regexp.MustCompile(`\bpurpose:?\s*(.+?)(?:\.|$)`), 1},

	// Closed vocabulary of bare reason nouns.
	{"medical-noun", regexp.MustCompile(`\b(sick|ill|unwell|not feeling well)\b`), 1},
	{"appointment-noun", regexp.MustCompile(`\b(doctor|hospital|medical|appointment)\b`), 1},
	{"personal-noun", regexp.MustCompile(`\b(family|personal|emergency)\b`), 1},
	{"travel-noun", regexp.MustCompile(`\b(vacation|holiday|travel|trip)\b`), 1},
	{"occasion-noun", regexp.MustCompile(`\b(wedding|marriage|funeral)\b`), 1},
	{"parental-noun", regexp.MustCompile(`\b(pregnant|pregnancy|maternity|paternity)\b`), 1},
	{"work-noun", regexp.MustCompile(`\b(business|conference|meeting|training)\b`), 1},

	// Contextual templates.
	{"i-am-clause", regexp.MustCompile(`\bi\s+(?:am|will be|have to|need to|must)\s+(.+?)(?:\.|$)`), 1},
	{"my-clause", regexp.MustCompile(`\bmy\s+(.+?)(?:\.|$)`), 1},
	{"going-clause", regexp.MustCompile(`\bgoing\s+(.+?)(?:\.|$)`), 1},
	{"attending-clause", regexp.MustCompile(`\battending\s+(.+?)(?:\.|$)`), 1},

	// Catch-alls, last on purpose.
	{"off-catchall", regexp.MustCompile(`\boff\s+(.+?)(?:\.|$)`), 1},
	{"leave-catchall", regexp.MustCompile(`\bleave\s+(.+?)(?:\.|$)`), 1},
}

var (
	leadingConnectorRe = regexp.MustCompile(`^(?:to|for|because|due to|since|as)\s+`)
	whitespaceRe       = regexp.MustCompile(`\s+`)
)

// ExtractReason extracts a leave reason from free text by trying the
// ordered template list. Each candidate is stripped of leading
// connector words and collapsed whitespace; too-short or stopword
// candidates are rejected and extraction proceeds to the next rule.
// ok is false when no rule yields an acceptable candidate.
func ExtractReason(text string) (reason string, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}

	for _, rule := range reasonRules {
		m := rule.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if candidate, accepted := cleanReasonCandidate(m[rule.group]); accepted {
			return candidate, true
		}
	}
	return "", false
}

// cleanReasonCandidate normalizes one candidate and applies the
// precision filters shared by all rules.
func cleanReasonCandidate(raw string) (string, bool) {
	cleaned := leadingConnectorRe.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " .,!?")
	if len(cleaned) < minReasonLength || reasonStopwords[cleaned] {
		return "", false
	}
	return cleaned, true
}
