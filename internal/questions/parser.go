package questions

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/mcdev12/awantura/internal/game"
)

// Question set files are plain text, one numbered block per question:
//
//	01. Treść pytania...
//	prawidłowa odpowiedz = ...
//	odpowiedz ABCD = A = ..., B = ..., C = ..., D = ...
//
// Header numbers may carry one to three digits and do not have to be
// contiguous. Blocks missing any of the three lines are skipped.
var (
	headerRe  = regexp.MustCompile(`^(\d{1,3})\.\s*(.+)`)
	correctRe = regexp.MustCompile(`(?i)prawidłowa\s+odpowied[zź]\s*=\s*(.+)`)
	abcdRe    = regexp.MustCompile(`(?i)odpowied[zź]\s*abcd\s*=\s*A\s*=\s*(.+?),\s*B\s*=\s*(.+?),\s*C\s*=\s*(.+?),\s*D\s*=\s*(.+)`)
)

// Parse extracts the question list from a raw set file. Malformed blocks
// are dropped rather than failing the whole file; an error is returned
// only when nothing usable remains.
func Parse(content string) ([]game.Question, error) {
	var parsed []game.Question
	for _, block := range splitBlocks(content) {
		q, ok := parseBlock(block)
		if !ok {
			continue
		}
		parsed = append(parsed, q)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no parsable questions in file")
	}
	return parsed, nil
}

// splitBlocks groups lines into blocks, a new block starting at every
// numbered header line.
func splitBlocks(content string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if headerRe.MatchString(strings.TrimSpace(line)) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func parseBlock(block string) (game.Question, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return game.Question{}, false
	}

	header := headerRe.FindStringSubmatch(block)
	if header == nil {
		return game.Question{}, false
	}
	text := strings.TrimSpace(header[2])

	correct := correctRe.FindStringSubmatch(block)
	if correct == nil {
		return game.Question{}, false
	}

	abcd := abcdRe.FindStringSubmatch(block)
	if abcd == nil {
		return game.Question{}, false
	}

	q := game.Question{
		Text:    text,
		Correct: strings.TrimSpace(correct[1]),
	}
	for i := 0; i < 4; i++ {
		q.Options[i] = strings.TrimSpace(abcd[i+1])
	}
	return q, true
}
