// Package filter holds the product listing's filter selections and page
// cursor. The Store is a pure state container: every mutation replaces the
// State value and notifies subscribers; nothing here performs I/O.
package filter

import (
	"errors"
	"strings"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/validation"
	"github.com/shopspring/decimal"
)

// ErrInvalidPage is returned when a page cursor below 1 is requested.
var ErrInvalidPage = errors.New("page must be >= 1")

// SortKey is a backend sort expression. A leading '-' means descending.
type SortKey string

const (
	SortNewest    SortKey = "-createdAt"
	SortOldest    SortKey = "createdAt"
	SortPriceAsc  SortKey = "subPrice"
	SortPriceDesc SortKey = "-subPrice"
	SortNameAsc   SortKey = "name"
	SortNameDesc  SortKey = "-name"
)

// DefaultSort is newest first.
const DefaultSort = SortNewest

// SortOption pairs a sort key with its display label.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions lists the selectable sort orders in display order.
var SortOptions = []SortOption{
	{SortNewest, "Newest First"},
	{SortOldest, "Oldest First"},
	{SortPriceAsc, "Price: Low to High"},
	{SortPriceDesc, "Price: High to Low"},
	{SortNameAsc, "Name: A to Z"},
	{SortNameDesc, "Name: Z to A"},
}

// ParseSortKey accepts either a sort key or its label, case-insensitively.
func ParseSortKey(s string) (SortKey, bool) {
	for _, opt := range SortOptions {
		if s == string(opt.Key) || strings.EqualFold(s, opt.Label) {
			return opt.Key, true
		}
	}
	return "", false
}

// State is the current filter selection plus page cursor.
//
// MinPrice and MaxPrice are independent: an inverted range is kept as given
// and forwarded to the backend unchanged.
type State struct {
	Category    string
	Brand       string
	MinPrice    decimal.NullDecimal
	MaxPrice    decimal.NullDecimal
	Search      string
	Sort        SortKey
	CurrentPage int
}

// Default returns the state the storefront starts with.
func Default() State {
	s := defaultFilters()
	s.CurrentPage = 1
	return s
}

func defaultFilters() State {
	return State{Sort: DefaultSort}
}

// Patch is a partial filter update. Nil fields keep their current value.
type Patch struct {
	Category *string
	Brand    *string
	MinPrice *decimal.NullDecimal
	MaxPrice *decimal.NullDecimal
	Search   *string
	Sort     *SortKey
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Category == nil && p.Brand == nil && p.MinPrice == nil &&
		p.MaxPrice == nil && p.Search == nil && p.Sort == nil
}

func (p Patch) apply(s State) State {
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.Brand != nil {
		s.Brand = *p.Brand
	}
	if p.MinPrice != nil {
		s.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		s.MaxPrice = *p.MaxPrice
	}
	if p.Search != nil {
		s.Search = *p.Search
	}
	if p.Sort != nil {
		s.Sort = *p.Sort
	}
	return s
}

// ParsePrice coerces price text typed by a user. Blank text means absent.
func ParsePrice(field, text string) (decimal.NullDecimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.NullDecimal{}, validation.New(field, "Price must be a number")
	}
	return decimal.NewNullDecimal(d), nil
}

// Ptr is a convenience for building Patch values.
func Ptr[T any](v T) *T {
	return &v
}
