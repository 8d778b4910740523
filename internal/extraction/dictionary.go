package extraction

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// ErrInvalidDictionary is returned when a keyword dictionary fails validation
var ErrInvalidDictionary = errors.New("invalid keyword dictionary")

// Dictionary holds the keyword lists that drive store-name detection and category
// suggestion. A loaded Dictionary is never modified and may be shared between
// parsers.
type Dictionary struct {
	Merchants  []string        `yaml:"merchants"`
	Categories []CategoryGroup `yaml:"categories"`
}

// CategoryGroup maps a category to the keywords that select it
type CategoryGroup struct {
	Name    Category `yaml:"name"`
	Store   []string `yaml:"store"`
	Content []string `yaml:"content"`
}

var defaultDictionary = sync.OnceValue(func() *Dictionary {
	d, err := LoadDictionary(bytes.NewReader(defaultKeywords))
	if err != nil {
		panic(fmt.Sprintf("embedded keywords.yaml: %v", err))
	}
	return d
})

// DefaultDictionary returns the dictionary embedded in the binary
func DefaultDictionary() *Dictionary {
	return defaultDictionary()
}

// LoadDictionary decodes and validates a YAML keyword dictionary.
// Keywords are trimmed and lowercased; category groups are reordered into the
// fixed suggestion priority.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	var d Dictionary
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDictionary)
		}
		return nil, fmt.Errorf("decoding dictionary: %w", err)
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDictionaryFile reads a YAML keyword dictionary from disk
func LoadDictionaryFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return LoadDictionary(bytes.NewReader(data))
}

func (d *Dictionary) normalize() error {
	merchants, err := normalizeKeywords(d.Merchants)
	if err != nil {
		return fmt.Errorf("merchants: %w", err)
	}
	d.Merchants = merchants

	seen := make(map[Category]bool, len(d.Categories))
	for i := range d.Categories {
		g := &d.Categories[i]
		rank := categoryRank(g.Name)
		if rank < 0 || g.Name == Other {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidDictionary, g.Name)
		}
		if seen[g.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidDictionary, g.Name)
		}
		seen[g.Name] = true

		if g.Store, err = normalizeKeywords(g.Store); err != nil {
			return fmt.Errorf("%s store keywords: %w", g.Name, err)
		}
		if g.Content, err = normalizeKeywords(g.Content); err != nil {
			return fmt.Errorf("%s content keywords: %w", g.Name, err)
		}
	}

	slices.SortStableFunc(d.Categories, func(a, b CategoryGroup) int {
		return categoryRank(a.Name) - categoryRank(b.Name)
	})
	return nil
}

func normalizeKeywords(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return nil, fmt.Errorf("%w: empty keyword", ErrInvalidDictionary)
		}
		out = append(out, kw)
	}
	return out, nil
}
