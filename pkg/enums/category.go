package enums

import (
	"fmt"
	"strings"
)

// Category is the catalog classification of an item.
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryFashion     Category = "FASHION"
	CategoryOthers      Category = "OTHERS"
	// CategoryAny is a query wildcard and is never stored on an item.
	CategoryAny Category = "ANY"
)

var storableCategories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryOthers,
}

var categoryDisplayNames = map[Category]string{
	CategoryElectronics: "Electronics",
	CategoryFashion:     "Fashion",
	CategoryOthers:      "Others",
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value can be stored on an item.
func (c Category) IsValid() bool {
	for _, candidate := range storableCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Matches reports whether an item stored under other satisfies the filter c.
func (c Category) Matches(other Category) bool {
	return c == CategoryAny || c == other
}

// DisplayName is the human-readable label used in notification text.
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return "Unknown"
}

// ParseCategory converts raw input into a storable Category.
func ParseCategory(value string) (Category, error) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid category %q", value)
}

// ParseCategoryFilter accepts every storable category plus ANY; empty input means ANY.
func ParseCategoryFilter(value string) (Category, error) {
	normalized := Category(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" || normalized == CategoryAny {
		return CategoryAny, nil
	}
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid category filter %q", value)
}
