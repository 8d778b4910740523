package receipt

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zombor/hsa-receipts/internal/extraction"
	"github.com/zombor/hsa-receipts/internal/scanning"
)

// DefaultOCRTimeout bounds a single call to the external OCR service
const DefaultOCRTimeout = 40 * time.Second

const (
	maxAmountDollars = 10000
	maxLineItems     = 10
	maxFilenameBase  = 50
)

// IDGenerator generates unique IDs for receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Extractor turns OCR text into candidate receipt fields
type Extractor interface {
	Parse(text string) *extraction.ExtractedReceipt
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles receipt operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
	ocrTimeout  time.Duration
}

// NewService creates a new Service with UUID receipt IDs and the system clock.
// A nil extractor uses the default parser.
func NewService(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor) *Service {
	return NewServiceWithDeps(db, scanner, storage, extractor, uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	if extractor == nil {
		extractor = extraction.NewParser()
	}
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
		ocrTimeout:  DefaultOCRTimeout,
	}
}

// SetOCRTimeout changes the deadline applied to OCR calls
func (s *Service) SetOCRTimeout(d time.Duration) {
	if d > 0 {
		s.ocrTimeout = d
	}
}

var (
	filenameNoiseRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeFilename shortens phone-generated names and drops anything unsafe
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if filenameNoiseRe.MatchString(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = filenameNoiseRe.ReplaceAllString(base, "")
	base = filenameSpaceRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > maxFilenameBase {
		base = strings.TrimSpace(base[:maxFilenameBase])
	}
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// ScanReceipt stores an upload, runs it through OCR and extracts candidate fields.
// Nothing is saved to the database: the returned Draft is shown to the user for
// review. When OCR fails the draft carries an empty extraction and OCRError so the
// user can fall back to manual entry.
func (s *Service) ScanReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Draft, error) {
	id := s.idGenerator.Generate()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	draft := &Draft{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
	}

	ocrCtx, cancel := context.WithTimeout(ctx, s.ocrTimeout)
	defer cancel()

	text, err := s.scanner.ExtractText(ocrCtx, data, contentType)
	if err != nil {
		if ctx.Err() != nil {
			// The client went away; nobody will review this draft.
			s.deleteFile(savedPath)
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		slog.Warn("OCR failed, returning empty form",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		draft.OCRError = ocrErrorMessage(err)
		text = ""
	}

	draft.Extraction = s.extractor.Parse(text)
	slog.Info("Scanned receipt",
		"id", id,
		"store_name", draft.Extraction.StoreName,
		"category", draft.Extraction.Category,
		"needs_review", draft.Extraction.NeedsReview,
	)
	return draft, nil
}

func ocrErrorMessage(err error) string {
	switch {
	case errors.Is(err, scanning.ErrNoText):
		return "No text could be read from this receipt. Please enter the details manually."
	case errors.Is(err, context.DeadlineExceeded):
		return "Reading the receipt took too long. Please enter the details manually."
	default:
		return "The receipt could not be read. Please enter the details manually."
	}
}

// ExtractText runs the extractor over text that was transcribed elsewhere
func (s *Service) ExtractText(text string) *extraction.ExtractedReceipt {
	return s.extractor.Parse(text)
}

// CreateReceipt validates reviewed input and saves it. An existing receipt with the
// same ID is replaced, keeping its creation time and, when none is given, its file.
// A file must have been scanned under the receipt's ID.
func (s *Service) CreateReceipt(in *ReceiptInput) (*Receipt, error) {
	now := s.timeSource.Now()

	receipt, err := s.buildReceipt(in, now)
	if err != nil {
		return nil, err
	}

	receipt.CreatedAt = now
	receipt.UpdatedAt = now
	if receipt.ID == "" {
		receipt.ID = s.idGenerator.Generate()
	} else {
		existing, err := s.db.GetReceipt(receipt.ID)
		switch {
		case err == nil:
			receipt.CreatedAt = existing.CreatedAt
			if receipt.Filename == "" {
				receipt.Filename = existing.Filename
				receipt.ContentType = existing.ContentType
			}
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("getting receipt: %w", err)
		}
	}

	// An upload belongs only to the draft it was scanned under.
	if receipt.Filename != "" && !ownsFile(receipt.ID, receipt.Filename) {
		return nil, fmt.Errorf("%w: file %q does not belong to receipt %s", ErrInvalidReceipt, receipt.Filename, receipt.ID)
	}

	if err := s.db.SaveReceipt(receipt); err != nil {
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	return receipt, nil
}

func (s *Service) buildReceipt(in *ReceiptInput, now time.Time) (*Receipt, error) {
	storeName := strings.TrimSpace(in.StoreName)
	if storeName == "" {
		return nil, fmt.Errorf("%w: store name is required", ErrInvalidReceipt)
	}

	if in.Amount <= 0 || in.Amount >= maxAmountDollars {
		return nil, fmt.Errorf("%w: amount must be between 0 and %d", ErrInvalidReceipt, maxAmountDollars)
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidReceipt)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return nil, fmt.Errorf("%w: date is in the future", ErrInvalidReceipt)
	}

	category := extraction.Other
	if strings.TrimSpace(in.Category) != "" {
		var ok bool
		if category, ok = extraction.ParseCategory(in.Category); !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidReceipt, in.Category)
		}
	}

	if len(in.LineItems) > maxLineItems {
		return nil, fmt.Errorf("%w: at most %d line items", ErrInvalidReceipt, maxLineItems)
	}
	items := make([]LineItem, 0, len(in.LineItems))
	for _, item := range in.LineItems {
		desc := strings.TrimSpace(item.Description)
		if desc == "" || item.Price <= 0 {
			return nil, fmt.Errorf("%w: line items need a description and a positive price", ErrInvalidReceipt)
		}
		items = append(items, LineItem{Description: desc, Price: toCents(item.Price)})
	}

	return &Receipt{
		ID:          strings.TrimSpace(in.ID),
		StoreName:   storeName,
		Date:        date,
		Amount:      toCents(in.Amount),
		Category:    category,
		LineItems:   items,
		Notes:       strings.TrimSpace(in.Notes),
		Filename:    in.Filename,
		ContentType: in.ContentType,
		RawText:     in.RawText,
	}, nil
}

// ownsFile reports whether a stored name was saved by ScanReceipt for id
func ownsFile(id, name string) bool {
	return strings.HasPrefix(name, id+"_")
}

// fileOwner returns the receipt ID a stored name was saved under
func fileOwner(name string) string {
	id, _, _ := strings.Cut(name, "_")
	return id
}

// toCents converts dollars to cents without float truncation (25.99 -> 2599)
func toCents(dollars float64) int {
	return int(decimal.NewFromFloat(dollars).Shift(2).Round(0).IntPart())
}

// GetReceipt retrieves a receipt by ID
func (s *Service) GetReceipt(id string) (*Receipt, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all receipts, most recent receipt date first
func (s *Service) ListReceipts() ([]*Receipt, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	slices.SortStableFunc(receipts, func(a, b *Receipt) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return receipts, nil
}

// DeleteReceipt removes a receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if receipt.Filename != "" {
		s.deleteFile(receipt.Filename)
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// deleteFile logs instead of failing; an orphaned file is harmless
func (s *Service) deleteFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// PruneDrafts deletes uploads whose draft was never saved as a receipt. Files younger
// than maxAge are kept so a user still reviewing a draft does not lose it.
func (s *Service) PruneDrafts(maxAge time.Duration) (int, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return 0, fmt.Errorf("listing receipts: %w", err)
	}
	saved := make(map[string]bool, len(receipts))
	for _, r := range receipts {
		saved[r.ID] = true
	}

	files, err := s.storage.List()
	if err != nil {
		return 0, fmt.Errorf("listing files: %w", err)
	}

	cutoff := s.timeSource.Now().Add(-maxAge)
	pruned := 0
	for _, f := range files {
		if saved[fileOwner(f.Name)] || f.ModTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(f.Name); err != nil {
			slog.Warn("Failed to prune draft file", "filename", f.Name, "error", err)
			continue
		}
		pruned++
	}

	if pruned > 0 {
		slog.Info("Pruned abandoned drafts", "count", pruned)
	}
	return pruned, nil
}

// GetReceiptFile retrieves the uploaded file for a receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}
	if receipt.Filename == "" {
		return nil, "", fmt.Errorf("receipt %s has no file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}
