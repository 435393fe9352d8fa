package extract

import "testing"

func TestExtractReason(t *testing.T) {
	cases := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"I need 3 days leave for family emergency", "family emergency", true},
		{"because my grandmother passed away", "my grandmother passed away", true},
		{"due to a wedding", "a wedding", true},
		{"I am sick", "sick", true},
		{"doctor appointment tomorrow", "doctor", true},
		{"reason: personal work", "personal work", true},
		{"", "", false},
		{"hmm", "", false},
	}
	for _, c := range cases {
		reason, ok := ExtractReason(c.text)
		if ok != c.ok {
			t.Errorf("ExtractReason(%q) ok = %v, want %v (got %q)", c.text, ok, c.ok, reason)
			continue
		}
		if ok && reason != c.expected {
			t.Errorf("ExtractReason(%q) = %q, want %q", c.text, reason, c.expected)
		}
	}
}

func TestExtractReasonRejectsStopwords(t *testing.T) {
	// A bare connector clause like "for it" carries no information and
	// must not be accepted as a reason.
	if reason, ok := ExtractReason("for it"); ok {
		t.Errorf("expected no reason from %q, got %q", "for it", reason)
	}
	if reason, ok := ExtractReason("for this"); ok {
		t.Errorf("expected no reason from %q, got %q", "for this", reason)
	}
}
