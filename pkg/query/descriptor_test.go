package query

import (
	"testing"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/filter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestBuild_Defaults(t *testing.T) {
	d := Build(filter.Default(), DefaultPageSize)

	assert.Equal(t, "limit=12&page=1&sort=-createdAt", d.Values().Encode())
}

func TestBuild_UnknownPageSizeFallsBack(t *testing.T) {
	assert.Equal(t, 12, Build(filter.Default(), 13).Limit)
	assert.Equal(t, 48, Build(filter.Default(), 48).Limit)
}

func TestValues_OmitsAbsentFields(t *testing.T) {
	tests := []struct {
		name string
		d    Descriptor
		want string
	}{
		{
			name: "empty",
			d:    Descriptor{},
			want: "",
		},
		{
			name: "search maps to name",
			d:    Descriptor{Page: 2, Limit: 24, Search: "laptop"},
			want: "limit=24&name=laptop&page=2",
		},
		{
			name: "prices",
			d:    Descriptor{MinPrice: price("10.5"), MaxPrice: price("200")},
			want: "maxPrice=200&minPrice=10.5",
		},
		{
			name: "zero price is treated as absent",
			d:    Descriptor{MinPrice: price("0"), MaxPrice: price("50")},
			want: "maxPrice=50",
		},
		{
			name: "inverted range is forwarded",
			d:    Descriptor{MinPrice: price("300"), MaxPrice: price("20")},
			want: "maxPrice=20&minPrice=300",
		},
		{
			name: "category brand select",
			d:    Descriptor{Category: "c1", Brand: "b1", Select: "name,price"},
			want: "brand=b1&category=c1&select=name%2Cprice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Values().Encode())
		})
	}
}

func TestKey_ValueEquality(t *testing.T) {
	a := Descriptor{Page: 1, Limit: 12, Category: "c1", MinPrice: price("10")}

	var b Descriptor
	b.MinPrice = price("10.00")
	b.Category = "c1"
	b.Limit = 12
	b.Page = 1

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(a.WithPage(2)))
}

func TestBuild_IsDeterministic(t *testing.T) {
	s := filter.NewStore()
	s.SetFilters(filter.Patch{Brand: filter.Ptr("b9"), Sort: filter.Ptr(filter.SortPriceAsc)})

	first := Build(s.State(), 36)
	second := Build(s.State(), 36)
	assert.Equal(t, first, second)
	assert.Equal(t, "brand=b9&limit=36&page=1&sort=subPrice", first.Key())
}

func TestWithSelect(t *testing.T) {
	d := Descriptor{Page: 1}.WithSelect("name", "subPrice")
	assert.Equal(t, "name,subPrice", d.Select)
}
