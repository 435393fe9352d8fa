package extract

import (
	"regexp"
	"strings"
)

// Name length bounds for an accepted substitute candidate.
const (
	minNameLength = 2
	maxNameLength = 50
)

// leadingFillers are conversational prefixes stripped before parsing a
// name, longest first so that overlapping phrases strip cleanly.
var leadingFillers = []string{
	"i would suggest", "i would recommend", "i suggest", "i recommend",
	"what about", "how about", "maybe", "perhaps", "i think",
	"let's go with", "lets go with", "go with", "assign", "choose",
	"pick", "select", "my substitute is", "substitute is", "substitute",
}

// leadingCopulas are verb fragments left over after filler stripping.
var leadingCopulas = []string{"would be", "could be", "should be", "is", "are"}

var nameTokenRe = regexp.MustCompile(`^[\p{L}'-]+$`)

// ExtractSubstituteName extracts a person name from free text. Leading
// filler phrases and copulas are stripped, punctuation trimmed, and the
// remainder accepted only if every whitespace-delimited token consists
// solely of letters, hyphens, or apostrophes and the whole string is
// within the length bounds. The result is title-cased; ok is false when
// no acceptable candidate remains.
func ExtractSubstituteName(text string) (name string, ok bool) {
	candidate := strings.TrimSpace(text)
	lower := strings.ToLower(candidate)

	for _, filler := range leadingFillers {
		if strings.HasPrefix(lower, filler) {
			candidate = strings.TrimSpace(candidate[len(filler):])
			lower = strings.ToLower(candidate)
			break
		}
	}
	for _, copula := range leadingCopulas {
		if strings.HasPrefix(lower, copula+" ") {
			candidate = strings.TrimSpace(candidate[len(copula):])
			break
		}
	}

	candidate = strings.Trim(candidate, " .,!?:;\"")
	if len(candidate) < minNameLength || len(candidate) > maxNameLength {
		return "", false
	}

	tokens := strings.Fields(candidate)
	if len(tokens) == 0 {
		return "", false
	}
	for _, tok := range tokens {
		if !nameTokenRe.MatchString(tok) {
			return "", false
		}
	}

	return titleCaseName(tokens), true
}

// titleCaseName capitalizes the first letter of each token, leaving the
// rest lowercased ("priya sharma" -> "Priya Sharma").
func titleCaseName(tokens []string) string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		runes := []rune(strings.ToLower(tok))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		out[i] = string(runes)
	}
	return strings.Join(out, " ")
}
