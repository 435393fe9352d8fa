package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value    string
		def      bool
		expected bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"garbage", true, true},
		{"garbage", false, false},
		{" true ", false, true},
	}
	for _, c := range cases {
		t.Setenv("LEAVEPIPE_TEST_BOOL", c.value)
		if got := ParseBoolEnv("LEAVEPIPE_TEST_BOOL", c.def); got != c.expected {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.expected)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	cases := []struct {
		value    string
		def      int
		expected int
	}{
		{"", 30, 30},
		{"45", 30, 45},
		{" 7 ", 30, 7},
		{"-2", 30, -2},
		{"abc", 30, 30},
	}
	for _, c := range cases {
		t.Setenv("LEAVEPIPE_TEST_INT", c.value)
		if got := ParseIntEnv("LEAVEPIPE_TEST_INT", c.def); got != c.expected {
			t.Errorf("ParseIntEnv(%q, %d) = %d, want %d", c.value, c.def, got, c.expected)
		}
	}
}
