package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Day multipliers for the supported units.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// spelledQuantities is the closed vocabulary of spelled-out counts.
var spelledQuantities = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"a": 1, "an": 1,
	"couple": 2, "few": 3, "several": 4,
}

var (
	digitUnitRe   = regexp.MustCompile(`(\d+)\s*(days?|weeks?|months?)`)
	spelledUnitRe = regexp.MustCompile(`\b(one|two|three|four|five|six|seven|eight|nine|ten|an|a|couple|few|several)\s+(?:of\s+)?(days?|weeks?|months?)`)
)

// ExtractDayCount extracts a positive day count from free text.
// Recognizes digit-prefixed units ("3 days", "2 weeks", "1 month") and
// spelled-out quantities ("three days", "a week", "couple of days").
// The first pattern match wins; ok is false when nothing matches, which
// callers must treat as missing information, never as zero.
func ExtractDayCount(text string) (days int, ok bool) {
	lower := strings.ToLower(text)

	if m := digitUnitRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n * unitMultiplier(m[2]), true
		}
		// Zero or unparseable counts are rejected at this boundary so an
		// invalid value can never reach the workflow store.
	}

	if m := spelledUnitRe.FindStringSubmatch(lower); m != nil {
		if n, found := spelledQuantities[m[1]]; found {
			return n * unitMultiplier(m[2]), true
		}
	}

	return 0, false
}

func unitMultiplier(unit string) int {
	switch {
	case strings.HasPrefix(unit, "week"):
		return daysPerWeek
	case strings.HasPrefix(unit, "month"):
		return daysPerMonth
	default:
		return 1
	}
}
