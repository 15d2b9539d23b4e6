package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidSearchField = errors.New("invalid search field")

type SearchField string

const (
	SearchByName     SearchField = "name"
	SearchByCategory SearchField = "category"
	SearchByColor    SearchField = "color"
	SearchByID       SearchField = "id"
)

// ParseSearchField accepts name, category, color or id in any case.
// An empty string selects name.
func ParseSearchField(s string) (SearchField, error) {
	switch field := SearchField(strings.ToLower(strings.TrimSpace(s))); field {
	case "":
		return SearchByName, nil
	case SearchByName, SearchByCategory, SearchByColor, SearchByID:
		return field, nil
	default:
		return "", fmt.Errorf("%q (must be name/category/color/id): %w", s, ErrInvalidSearchField)
	}
}

// Match reports whether item matches query on this field. Text fields match
// case-insensitive substrings, id matches the decimal identifier exactly.
func (f SearchField) Match(item Item, query string) bool {
	switch f {
	case SearchByName:
		return containsFold(item.Name, query)
	case SearchByCategory:
		return containsFold(item.Category, query)
	case SearchByColor:
		return containsFold(item.Color, query)
	case SearchByID:
		return strconv.Itoa(item.ID) == strings.ToLower(query)
	default:
		return false
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
