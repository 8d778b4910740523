// Package extraction turns raw OCR receipt text into a best-guess structured receipt.
//
// Every field is extracted independently with ordered pattern matching. A field that
// cannot be determined is left empty or nil and flagged for review; extraction never
// fails.
package extraction

import (
	"strings"
	"time"
)

// DefaultYearPivot is the two-digit year pivot: years above it map to 19xx, the rest
// to 20xx.
const DefaultYearPivot = 50

// ExtractedReceipt is the structured best guess for a receipt transcript
type ExtractedReceipt struct {
	StoreName   string     `json:"store_name"`
	Amount      *float64   `json:"amount"`
	ReceiptDate *string    `json:"receipt_date"` // YYYY-MM-DD
	Category    Category   `json:"suggested_category"`
	LineItems   []LineItem `json:"line_items"`
	RawText     string     `json:"raw_text"`
	NeedsReview []string   `json:"needs_review"`
}

// LineItem is a single purchased good or service
type LineItem struct {
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Clock provides the current time. The date window for receipt dates is relative to
// it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Parser extracts receipt fields from OCR text. It holds no mutable state and is safe
// for concurrent use.
type Parser struct {
	dict      *Dictionary
	clock     Clock
	yearPivot int
}

// NewParser creates a Parser with the embedded dictionary, the system clock and the
// default year pivot
func NewParser() *Parser {
	return NewParserWithDeps(DefaultDictionary(), systemClock{}, DefaultYearPivot)
}

// NewParserWithDeps creates a Parser with custom dependencies. A nil dictionary or
// clock falls back to the default.
func NewParserWithDeps(dict *Dictionary, clock Clock, yearPivot int) *Parser {
	if dict == nil {
		dict = DefaultDictionary()
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Parser{
		dict:      dict,
		clock:     clock,
		yearPivot: yearPivot,
	}
}

// Parse extracts a receipt from OCR text. Blank input yields an all-default receipt.
func (p *Parser) Parse(text string) *ExtractedReceipt {
	r := &ExtractedReceipt{
		Category:  Other,
		LineItems: []LineItem{},
		RawText:   text,
	}

	if strings.TrimSpace(text) != "" {
		lines := splitLines(text)
		lower := strings.ToLower(text)

		r.StoreName = p.extractStoreName(lines)
		r.Amount = extractAmount(lower)
		r.ReceiptDate = p.extractDate(lower)
		r.LineItems = extractLineItems(lines)
		r.Category = p.suggestCategory(r.StoreName, lower)
	}

	r.NeedsReview = ReviewFlags(r)
	return r
}

// splitLines returns the non-empty lines of text, trimmed
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
