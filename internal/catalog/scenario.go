package catalog

import (
	"regexp"
	"unicode/utf8"
)

// ScenarioStemRunes is the stem length at which a question reads as a
// scenario regardless of wording.
const ScenarioStemRunes = 220

var scenarioPattern = regexp.MustCompile(`(?i)\b(scenario|a (company|user|customer|technician|administrator|analyst)|an? (organization|employee|engineer)|your (manager|team|company)|you are (asked|tasked|working)|which of the following should|after (reviewing|investigating))\b`)

// IsScenario reports whether q reads as a narrative scenario: the legacy
// marker is set, the stem is long, or the stem uses scenario phrasing.
func IsScenario(q *Question) bool {
	if q.Scenario {
		return true
	}
	if utf8.RuneCountInString(q.Stem) >= ScenarioStemRunes {
		return true
	}
	return scenarioPattern.MatchString(q.Stem)
}
