package game

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// AcceptThreshold is the minimum fuzzy score for an answer to count as
// correct. Together with the u-to-o fold below it is a load-bearing
// scoring rule; do not tune either.
const AcceptThreshold = 80

var diacritics = strings.NewReplacer(
	"ó", "o",
	"ł", "l",
	"ż", "z",
	"ź", "z",
	"ć", "c",
	"ń", "n",
	"ś", "s",
	"ą", "a",
	"ę", "e",
	"ü", "u",
)

// Normalize prepares free-text answers for fuzzy comparison: lowercase,
// trim, Polish diacritics to ASCII, then every remaining "u" folded to "o"
// (deliberate phonetic leniency, ó/u/o all compare equal), then all
// whitespace stripped. Normalize is idempotent.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = diacritics.Replace(text)
	text = strings.ReplaceAll(text, "u", "o")
	return strings.Join(strings.Fields(text), "")
}

// Score returns the edit-distance similarity of the normalized answers in
// [0,100].
func Score(user, correct string) int {
	return fuzzy.Ratio(Normalize(user), Normalize(correct))
}

// Verify scores the user answer against the canonical one and reports
// whether it clears the acceptance threshold.
func Verify(user, correct string) (score int, accepted bool) {
	score = Score(user, correct)
	return score, score >= AcceptThreshold
}
