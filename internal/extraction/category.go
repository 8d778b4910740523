package extraction

import (
	"slices"
	"strings"
)

// Category is the HSA expense category suggested for a receipt
type Category string

const (
	Pharmacy      Category = "Pharmacy"
	Dental        Category = "Dental"
	Vision        Category = "Vision"
	MedicalDevice Category = "Medical Device"
	DoctorVisit   Category = "Doctor Visit"
	Other         Category = "Other"
)

// allCategories is also the suggestion priority order. Other is the fallback and
// never has a keyword group.
var allCategories = []Category{
	Pharmacy,
	Dental,
	Vision,
	MedicalDevice,
	DoctorVisit,
	Other,
}

// Categories returns every category in priority order
func Categories() []Category {
	return slices.Clone(allCategories)
}

// ParseCategory canonicalizes user input to a Category. The second return value is
// false when the input is not one of the known categories, in which case Other is
// returned.
func ParseCategory(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}
	for _, c := range allCategories {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return Other, false
}

func categoryRank(c Category) int {
	return slices.Index(allCategories, c)
}

// suggestCategory returns the first category group whose store keywords appear in
// the store name or whose content keywords appear in the lowercased receipt text.
func (p *Parser) suggestCategory(storeName, lowerText string) Category {
	store := strings.ToLower(storeName)
	for _, group := range p.dict.Categories {
		if containsAny(store, group.Store) || containsAny(lowerText, group.Content) {
			return group.Name
		}
	}
	return Other
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
