package extraction

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"time"
)

const isoDate = "2006-01-02"

var (
	shortFirstDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\b`)
	yearFirstDateRe  = regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)
)

// fieldOrder gives the index of each date field within a matched triple
type fieldOrder struct {
	month, day, year int
}

// fieldOrders is the interpretation precedence: month/day/year, year/month/day,
// day/month/year. Without locale information the first in-window reading wins.
var fieldOrders = []fieldOrder{
	{month: 0, day: 1, year: 2},
	{month: 1, day: 2, year: 0},
	{month: 1, day: 0, year: 2},
}

type dateMatch struct {
	pos    int
	fields [3]string
}

// extractDate returns the first date candidate in the text that falls within the
// last year, formatted as YYYY-MM-DD. lowerText must be lowercased.
func (p *Parser) extractDate(lowerText string) *string {
	now := p.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	earliest := today.AddDate(-1, 0, 0)

	for _, m := range findDateMatches(lowerText) {
		for _, order := range fieldOrders {
			d, ok := p.buildDate(m.fields[order.year], m.fields[order.month], m.fields[order.day], today.Location())
			if !ok {
				continue
			}
			if d.After(today) || d.Before(earliest) {
				continue
			}
			s := d.Format(isoDate)
			return &s
		}
	}
	return nil
}

// findDateMatches collects digit-separator triples in order of appearance
func findDateMatches(text string) []dateMatch {
	var matches []dateMatch
	for _, re := range []*regexp.Regexp{shortFirstDateRe, yearFirstDateRe} {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			matches = append(matches, dateMatch{
				pos: idx[0],
				fields: [3]string{
					text[idx[2]:idx[3]],
					text[idx[4]:idx[5]],
					text[idx[6]:idx[7]],
				},
			})
		}
	}
	slices.SortStableFunc(matches, func(a, b dateMatch) int {
		return cmp.Compare(a.pos, b.pos)
	})
	return matches
}

// buildDate returns the calendar date for the fields, or false if it does not exist
func (p *Parser) buildDate(yearStr, monthStr, dayStr string, loc *time.Location) (time.Time, bool) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	if len(yearStr) <= 2 {
		year = p.expandYear(year)
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow, e.g. Feb 30 becomes Mar 1
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func (p *Parser) expandYear(yy int) int {
	if yy > p.yearPivot {
		return 1900 + yy
	}
	return 2000 + yy
}
