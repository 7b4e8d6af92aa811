package normalize

import (
	"regexp"
	"strings"
)

// Vocabulary that makes one side of a split title "lexically resemble" a
// job title. Extraction is accepted only when exactly one side matches.
var jobWords = []string{
	"engineer", "developer", "manager", "analyst", "designer",
	"director", "lead", "senior", "junior", "intern", "specialist",
}

// Substrings that make parenthesized title text look like a location.
var locationIndicators = []string{
	"remote", "hybrid", "ca", "ny", "tx", "fl", "city", "state",
	"san francisco", "new york", "los angeles", "chicago", "boston",
}

var parenRe = regexp.MustCompile(`\(([^)]+)\)`)

// extractCompanyFromTitle attempts conservative company extraction from
// patterns like "Title at Company", "Title - Company", "Company - Title".
// Returns "" when nothing qualifies.
func extractCompanyFromTitle(title string) string {
	if title == "" {
		return ""
	}

	for _, sep := range []string{" at ", " - ", " | "} {
		if !strings.Contains(title, sep) {
			continue
		}
		parts := strings.SplitN(title, sep, 2)
		left := strings.TrimSpace(parts[0])
		right := strings.TrimSpace(parts[1])

		leftIsTitle := hasJobWord(left)
		rightIsTitle := hasJobWord(right)

		switch {
		case leftIsTitle && !rightIsTitle:
			return right
		case rightIsTitle && !leftIsTitle:
			return left
		case sep == " at ":
			// "Title at Company" even when both or neither side matches.
			return right
		}
	}
	return ""
}

// extractLocationFromTitle pulls parenthesized text out of the title when
// it matches the location vocabulary, e.g. "Engineer (Remote)" or
// "Designer (New York, NY)".
func extractLocationFromTitle(title string) string {
	if title == "" {
		return ""
	}
	for _, m := range parenRe.FindAllStringSubmatch(title, -1) {
		inner := m[1]
		lower := strings.ToLower(inner)
		for _, ind := range locationIndicators {
			if strings.Contains(lower, ind) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return ""
}

func hasJobWord(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range jobWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
