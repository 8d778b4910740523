package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxLineItems = 10

var lineItemRe = regexp.MustCompile(`^(.+?)\s+\$?(\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2})$`)

// extractLineItems collects "description  price" lines in order of appearance
func extractLineItems(lines []string) []LineItem {
	items := []LineItem{}
	for _, line := range lines {
		m := lineItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		desc := strings.TrimSpace(m[1])
		if utf8.RuneCountInString(desc) <= 2 {
			continue
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		if err != nil || price <= 0 {
			continue
		}

		items = append(items, LineItem{Description: desc, Price: price})
		if len(items) == maxLineItems {
			break
		}
	}
	return items
}
