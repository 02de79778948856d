package chat

import (
	"regexp"
	"strconv"
	"strings"
)

var setCommandRe = regexp.MustCompile(`^\d{1,3}$`)

// ParseSetCommand reports whether a chat line is a question set selection:
// a bare one to three digit number within [1, maxSet]. Whether the author
// is allowed to select a set is the caller's concern.
func ParseSetCommand(text string, maxSet int) (int, bool) {
	text = strings.TrimSpace(text)
	if !setCommandRe.MatchString(text) {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > maxSet {
		return 0, false
	}
	return n, true
}
