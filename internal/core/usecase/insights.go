package usecase

import "strings"

const maxHighlights = 5

// redFlagRules are checked in this fixed order; output order follows the
// rule order, not order of appearance in the summary text.
var redFlagRules = []struct {
	marker  string
	message string
}{
	{"discrepanc", "Potential discrepancies detected"},
	{"inconsisten", "Inconsistencies found"},
	{"unusual", "Unusual patterns identified"},
	{"concern", "Areas of concern noted"},
}

var highlightTriggers = []string{"key", "important", "significant"}

// RedFlags mines fixed warning messages from a summary string. It tolerates
// empty input and must never fail.
func RedFlags(summary string) []string {
	flags := make([]string, 0, len(redFlagRules))
	lower := strings.ToLower(summary)
	for _, rule := range redFlagRules {
		if strings.Contains(lower, rule.marker) {
			flags = append(flags, rule.message)
		}
	}
	return flags
}

// Highlights keeps up to five sentences, in original order, whose untrimmed
// length exceeds 20 characters and that mention a trigger word.
func Highlights(summary string) []string {
	out := make([]string, 0, maxHighlights)
	for _, sentence := range splitSentences(summary) {
		if len(sentence) <= 20 {
			continue
		}
		lower := strings.ToLower(sentence)
		matched := false
		for _, trigger := range highlightTriggers {
			if strings.Contains(lower, trigger) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		out = append(out, strings.TrimSpace(sentence))
		if len(out) == maxHighlights {
			break
		}
	}
	return out
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}
