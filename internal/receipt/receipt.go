package receipt

import (
	"errors"
	"time"

	"github.com/zombor/hsa-receipts/internal/extraction"
)

var (
	// ErrNotFound is returned when a receipt does not exist
	ErrNotFound = errors.New("receipt not found")

	// ErrInvalidReceipt is returned when receipt input fails validation
	ErrInvalidReceipt = errors.New("invalid receipt")
)

// Receipt represents a saved healthcare receipt
type Receipt struct {
	ID          string              `json:"id"`
	StoreName   string              `json:"store_name"`
	Date        time.Time           `json:"date"`
	Amount      int                 `json:"amount"` // Amount in cents
	Category    extraction.Category `json:"category"`
	LineItems   []LineItem          `json:"line_items"`
	Notes       string              `json:"notes,omitempty"`
	Filename    string              `json:"filename,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	RawText     string              `json:"raw_text,omitempty"` // OCR transcript kept for audit
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// LineItem is a purchased good or service on a saved receipt
type LineItem struct {
	Description string `json:"description"`
	Price       int    `json:"price"` // Price in cents
}

// Draft is the result of scanning an upload. It is not persisted; the user reviews
// the extraction and submits a ReceiptInput.
type Draft struct {
	ID          string                       `json:"id"`
	Filename    string                       `json:"filename"`
	ContentType string                       `json:"content_type"`
	Extraction  *extraction.ExtractedReceipt `json:"extraction"`
	OCRError    string                       `json:"ocr_error,omitempty"`
}

// ReceiptInput is a reviewed or manually entered receipt, amounts in dollars as the
// user sees them
type ReceiptInput struct {
	ID          string                `json:"id,omitempty"`
	StoreName   string                `json:"store_name"`
	Date        string                `json:"date"` // YYYY-MM-DD
	Amount      float64               `json:"amount"`
	Category    string                `json:"category"`
	LineItems   []extraction.LineItem `json:"line_items"`
	Notes       string                `json:"notes"`
	Filename    string                `json:"filename"`
	ContentType string                `json:"content_type"`
	RawText     string                `json:"raw_text"`
}
