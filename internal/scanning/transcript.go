package scanning

import (
	"regexp"
	"strings"
)

var (
	fenceRe      = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	crlfRe       = regexp.MustCompile(`\r\n?`)
	tabsRe       = regexp.MustCompile(`\t+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// cleanTranscript strips the markdown code fences vision models like to wrap their
// answers in and normalizes line endings. Line structure is kept because the
// extractor works line by line.
func cleanTranscript(text string) (string, error) {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = fenceRe.ReplaceAllString(text, "")
	text = tabsRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if text == "" || strings.EqualFold(text, noTextMarker) {
		return "", ErrNoText
	}
	return text, nil
}
