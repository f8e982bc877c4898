package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listing is the wire form of GET /product: either a bare array of
// products or a paginated object. It is decoded once here and never leaves
// the package.
type listing struct {
	bare  []Product
	paged *Page
}

func (l *listing) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty listing body")
	}

	switch data[0] {
	case '[':
		return json.Unmarshal(data, &l.bare)
	case '{':
		l.paged = &Page{}
		return json.Unmarshal(data, l.paged)
	default:
		return fmt.Errorf("unexpected listing shape starting with %q", data[0])
	}
}

// page normalizes either shape into a Page. A bare array is a single page.
func (l listing) page() *Page {
	if l.paged != nil {
		p := *l.paged
		if p.Products == nil {
			p.Products = []Product{}
		}
		return &p
	}

	products := l.bare
	if products == nil {
		products = []Product{}
	}
	return &Page{
		Products:      products,
		TotalProducts: len(products),
		TotalPages:    1,
		CurrentPage:   1,
	}
}

// decodePage decodes a listing body into the normalized Page.
func decodePage(body []byte) (*Page, error) {
	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, fmt.Errorf("decode product listing: %w", err)
	}
	return l.page(), nil
}

// decodeList decodes a bare array, or an object holding the array under
// field. Anything else yields an empty list.
func decodeList[T any](body []byte, field string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", field, err)
		}
		return out, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	raw, ok := wrapped[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	return out, nil
}

func decodeProduct(body []byte) (*Product, error) {
	var p Product
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}
