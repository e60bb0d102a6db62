package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// ForSpeech prepares assistant text for a synthesizer: markup is stripped,
// bullets become plain sentences, clinical and unit abbreviations are
// expanded, and whitespace runs collapse to single spaces. The function is
// pure and idempotent; both synthesis strategies receive its output.
func ForSpeech(text string) string {
	out := tagPattern.ReplaceAllString(text, "")
	out = boldPattern.ReplaceAllString(out, "$1")
	out = italicPattern.ReplaceAllString(out, "$1")
	out = headingPattern.ReplaceAllString(out, "")
	out = bulletPattern.ReplaceAllString(out, "")
	out = expandAbbreviations(out)
	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

var (
	tagPattern     = regexp.MustCompile(`<[^<>]*>`)
	boldPattern    = regexp.MustCompile(`(?:\*\*|__)([^*_]+)(?:\*\*|__)`)
	italicPattern  = regexp.MustCompile(`(?:\*|_)([^*_\s][^*_]*)(?:\*|_)`)
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bulletPattern  = regexp.MustCompile(`(?m)^\s*(?:[-*•‣]|\d+[.)])\s+`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// abbreviations maps spoken-unfriendly clinical and unit shorthand to full
// words. Matching is whole-word and case-sensitive; expansions never contain
// a whole-word occurrence of any key, which keeps ForSpeech idempotent.
var abbreviations = map[string]string{
	"mg":   "milligrams",
	"mcg":  "micrograms",
	"ml":   "milliliters",
	"mL":   "milliliters",
	"kg":   "kilograms",
	"mmHg": "millimeters of mercury",
	"bpm":  "beats per minute",
	"BP":   "blood pressure",
	"HR":   "heart rate",
	"Rx":   "prescription",
	"Dr.":  "Doctor",
	"Dr":   "Doctor",
	"appt": "appointment",
	"meds": "medications",
	"temp": "temperature",
	"IV":   "intravenous",
	"PRN":  "as needed",
	"BID":  "twice a day",
	"TID":  "three times a day",
}

var abbrevPatterns = buildAbbrevPatterns()

type abbrevPattern struct {
	re          *regexp.Regexp
	replacement string
}

// buildAbbrevPatterns compiles one whole-word pattern per abbreviation,
// longest key first so "mmHg" wins over any shorter substring of itself.
func buildAbbrevPatterns() []abbrevPattern {
	keys := make([]string, 0, len(abbreviations))
	for k := range abbreviations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	patterns := make([]abbrevPattern, 0, len(keys))
	for _, k := range keys {
		quoted := regexp.QuoteMeta(k)
		// trailing-dot keys carry their own boundary
		expr := `\b` + quoted + `\b`
		if strings.HasSuffix(k, ".") {
			expr = `\b` + quoted
		}
		patterns = append(patterns, abbrevPattern{
			re:          regexp.MustCompile(expr),
			replacement: abbreviations[k],
		})
	}
	return patterns
}

func expandAbbreviations(text string) string {
	for _, p := range abbrevPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}
