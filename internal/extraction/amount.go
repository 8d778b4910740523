package extraction

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// maxAmount is an exclusive upper bound; larger values are almost always OCR noise
// such as phone or account numbers.
const maxAmount = 10000

const numberPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

// labeledAmountRes are tried in priority order
var labeledAmountRes = []*regexp.Regexp{
	regexp.MustCompile(`\btotal\b\s*:?\s*\$?\s*` + numberPattern),
	regexp.MustCompile(`\bamount\b\s*:?\s*\$?\s*` + numberPattern),
	regexp.MustCompile(`\bbalance\b\s*:?\s*\$?\s*` + numberPattern),
}

var dollarAmountRe = regexp.MustCompile(`\$\s*` + numberPattern)

// extractAmount returns the first labeled amount in range, else the largest
// dollar-prefixed amount in range, else nil. lowerText must be lowercased.
func extractAmount(lowerText string) *float64 {
	for _, re := range labeledAmountRes {
		for _, m := range re.FindAllStringSubmatch(lowerText, -1) {
			if v, ok := parseAmount(m[1]); ok {
				return &v
			}
		}
	}

	var candidates []float64
	for _, m := range dollarAmountRe.FindAllStringSubmatch(lowerText, -1) {
		if v, ok := parseAmount(m[1]); ok {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	largest := slices.Max(candidates)
	return &largest
}

// parseAmount parses a number with optional thousands separators and reports whether
// it lies in (0, maxAmount)
func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, v > 0 && v < maxAmount
}
