package scanning

import (
	"context"
	"errors"
)

// ErrNoText is returned when the OCR service produced no usable text
var ErrNoText = errors.New("no text found in receipt")

// Scanner transcribes receipt images through an external OCR service
type Scanner interface {
	// ExtractText returns the raw text printed on a receipt image or PDF
	ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
