package models

import "testing"

func TestLeaveRequestValidate(t *testing.T) {
	valid := LeaveRequest{RequesterName: "Rahul Verma", Days: 3, Reason: "family emergency"}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	cases := []struct {
		name     string
		request  LeaveRequest
		expected error
	}{
		{"empty requester", LeaveRequest{Days: 3, Reason: "sick"}, ErrEmptyRequester},
		{"zero days", LeaveRequest{RequesterName: "Rahul", Days: 0, Reason: "sick"}, ErrInvalidDayCount},
		{"negative days", LeaveRequest{RequesterName: "Rahul", Days: -1, Reason: "sick"}, ErrInvalidDayCount},
		{"empty reason", LeaveRequest{RequesterName: "Rahul", Days: 3}, ErrEmptyReason},
	}
	for _, c := range cases {
		if err := c.request.Validate(); err != c.expected {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, err)
		}
	}
}

func TestLeaveStatusIsTerminal(t *testing.T) {
	terminal := []LeaveStatus{LeaveStatusApproved, LeaveStatusRejected}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}

	open := []LeaveStatus{
		LeaveStatusPending,
		LeaveStatusSubstituteAssigned,
		LeaveStatusSubstituteConfirmed,
		LeaveStatusSubstituteDeclined,
	}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
}

func TestLeaveDraft(t *testing.T) {
	var draft LeaveDraft
	if draft.Complete() {
		t.Error("empty draft must not be complete")
	}
	missing := draft.MissingFields()
	if len(missing) != 2 || missing[0] != "number of days" || missing[1] != "reason" {
		t.Errorf("unexpected missing fields: %v", missing)
	}

	draft.Days = 3
	if got := draft.MissingFields(); len(got) != 1 || got[0] != "reason" {
		t.Errorf("unexpected missing fields: %v", got)
	}

	draft.Reason = "family emergency"
	if !draft.Complete() {
		t.Error("draft with days and reason must be complete")
	}
	if got := draft.MissingFields(); len(got) != 0 {
		t.Errorf("expected no missing fields, got %v", got)
	}
}

func TestAPIResponseHelpers(t *testing.T) {
	ok := Success(map[string]int{"count": 1})
	if ok.Status != string(APIStatusOK) || ok.Result == nil {
		t.Errorf("unexpected success envelope: %+v", ok)
	}

	fail := Error("boom")
	if fail.Status != string(APIStatusError) || fail.Message != "boom" {
		t.Errorf("unexpected error envelope: %+v", fail)
	}
}
