// Package query turns filter state into the request descriptor for the
// product listing endpoint. A Descriptor is both the wire request and the
// cache key for the page it returns.
package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/filter"
	"github.com/shopspring/decimal"
)

// Wire parameter names of GET /product.
const (
	ParamPage     = "page"
	ParamLimit    = "limit"
	ParamSort     = "sort"
	ParamCategory = "category"
	ParamBrand    = "brand"
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamName     = "name"
	ParamSelect   = "select"
)

// DefaultPageSize is the page size used when none (or an unknown one) is chosen.
const DefaultPageSize = 12

// PageSizes are the selectable page sizes.
var PageSizes = []int{12, 24, 36, 48}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	return slices.Contains(PageSizes, n)
}

// Descriptor is an immutable snapshot of a listing request.
type Descriptor struct {
	Page     int
	Limit    int
	Sort     string
	Category string
	Brand    string
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Search   string
	Select   string
}

// Build derives the descriptor for state at the given page size.
func Build(state filter.State, limit int) Descriptor {
	if !ValidPageSize(limit) {
		limit = DefaultPageSize
	}
	return Descriptor{
		Page:     state.CurrentPage,
		Limit:    limit,
		Sort:     string(state.Sort),
		Category: state.Category,
		Brand:    state.Brand,
		MinPrice: state.MinPrice,
		MaxPrice: state.MaxPrice,
		Search:   state.Search,
	}
}

// WithPage returns a copy of d pointing at page.
func (d Descriptor) WithPage(page int) Descriptor {
	d.Page = page
	return d
}

// WithSelect returns a copy of d projecting only the given fields.
func (d Descriptor) WithSelect(fields ...string) Descriptor {
	d.Select = strings.Join(fields, ",")
	return d
}

// Values encodes the descriptor as query parameters. Empty strings, absent
// prices and zero numbers are left out rather than sent empty.
func (d Descriptor) Values() url.Values {
	v := url.Values{}
	if d.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(d.Page))
	}
	if d.Limit > 0 {
		v.Set(ParamLimit, strconv.Itoa(d.Limit))
	}
	setString(v, ParamSort, d.Sort)
	setString(v, ParamCategory, d.Category)
	setString(v, ParamBrand, d.Brand)
	setPrice(v, ParamMinPrice, d.MinPrice)
	setPrice(v, ParamMaxPrice, d.MaxPrice)
	setString(v, ParamName, d.Search)
	setString(v, ParamSelect, d.Select)
	return v
}

// Key returns the canonical cache key. Descriptors with equal field values
// always produce the same key.
func (d Descriptor) Key() string {
	// url.Values.Encode sorts by parameter name.
	return d.Values().Encode()
}

// Equal reports value equality.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Key() == other.Key()
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.Key()
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setPrice(v url.Values, key string, price decimal.NullDecimal) {
	if price.Valid && !price.Decimal.IsZero() {
		v.Set(key, price.Decimal.String())
	}
}
