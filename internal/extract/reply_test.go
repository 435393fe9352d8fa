package extract

import "testing"

func TestParseSubstituteReply(t *testing.T) {
	cases := []struct {
		text     string
		expected SubstituteReply
		ok       bool
	}{
		{"Accept #3", SubstituteReply{Accept: true, LeaveID: 3}, true},
		{"accept 3", SubstituteReply{Accept: true, LeaveID: 3}, true},
		{"yes I can cover #12", SubstituteReply{Accept: true, LeaveID: 12}, true},
		{"ok #4", SubstituteReply{Accept: true, LeaveID: 4}, true},
		{"Decline #5", SubstituteReply{Accept: false, LeaveID: 5}, true},
		{"no #7", SubstituteReply{Accept: false, LeaveID: 7}, true},
		{"I can't do #5", SubstituteReply{Accept: false, LeaveID: 5}, true},
		{"cannot cover #9", SubstituteReply{Accept: false, LeaveID: 9}, true},
		{"yes", SubstituteReply{}, false},
		{"accept", SubstituteReply{}, false},
		{"hello", SubstituteReply{}, false},
		{"", SubstituteReply{}, false},
	}
	for _, c := range cases {
		got, ok := ParseSubstituteReply(c.text)
		if ok != c.ok {
			t.Errorf("ParseSubstituteReply(%q) ok = %v, want %v", c.text, ok, c.ok)
			continue
		}
		if ok && got != c.expected {
			t.Errorf("ParseSubstituteReply(%q) = %+v, want %+v", c.text, got, c.expected)
		}
	}
}
