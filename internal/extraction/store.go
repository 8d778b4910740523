package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	merchantScanLines = 5
	fallbackScanLines = 3
	maxStoreWords     = 3
)

var (
	amountLineRe = regexp.MustCompile(`(?i)\$\s*\d|total|amount|balance`)
	dateLineRe   = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	storeNoiseRe = regexp.MustCompile(`[^\w\s&'-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

func isAmountLine(line string) bool {
	return amountLineRe.MatchString(line)
}

func isDateLine(line string) bool {
	return dateLineRe.MatchString(line)
}

// extractStoreName prefers a known healthcare merchant near the top of the receipt,
// then the first header-looking line.
func (p *Parser) extractStoreName(lines []string) string {
	for _, line := range head(lines, merchantScanLines) {
		if containsAny(strings.ToLower(line), p.dict.Merchants) {
			return cleanStoreName(line)
		}
	}

	for _, line := range head(lines, fallbackScanLines) {
		if utf8.RuneCountInString(line) > 3 && !isAmountLine(line) && !isDateLine(line) {
			return cleanStoreName(line)
		}
	}

	return ""
}

// cleanStoreName strips punctuation and keeps at most the first three words, each
// with an upper-case first letter and the rest lower-case
func cleanStoreName(line string) string {
	line = storeNoiseRe.ReplaceAllString(line, "")
	line = whitespaceRe.ReplaceAllString(line, " ")

	words := strings.Fields(line)
	if len(words) > maxStoreWords {
		words = words[:maxStoreWords]
	}
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

// titleWord capitalizes only the first rune, so "RITE-AID" becomes "Rite-aid" and
// "3M" becomes "3m". Casers are stateful, so new ones per call.
func titleWord(w string) string {
	_, size := utf8.DecodeRuneInString(w)
	return cases.Title(language.English).String(w[:size]) + cases.Lower(language.English).String(w[size:])
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}
