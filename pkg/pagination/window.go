package pagination

import (
	"strconv"
)

// MaxUnfolded is the largest page count listed without ellipses.
const MaxUnfolded = 7

// EllipsisText is how a gap is rendered.
const EllipsisText = "..."

// Indicator is one element of the page bar: a page number or a gap.
type Indicator struct {
	Page     int
	Ellipsis bool
}

// String renders the page number or EllipsisText.
func (i Indicator) String() string {
	if i.Ellipsis {
		return EllipsisText
	}
	return strconv.Itoa(i.Page)
}

// Window returns the indicators for current out of total pages. It returns
// nil when total <= 1: no page bar is shown.
func Window(current, total int) []Indicator {
	if total <= 1 {
		return nil
	}

	if total <= MaxUnfolded {
		out := make([]Indicator, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, Indicator{Page: p})
		}
		return out
	}

	out := []Indicator{{Page: 1}}
	listed := map[int]bool{1: true}

	if current > 3 {
		out = append(out, Indicator{Ellipsis: true})
	}

	start := max(2, current-1)
	end := min(total-1, current+1)
	for p := start; p <= end; p++ {
		if !listed[p] {
			out = append(out, Indicator{Page: p})
			listed[p] = true
		}
	}

	if current < total-2 {
		out = append(out, Indicator{Ellipsis: true})
	}

	if !listed[total] {
		out = append(out, Indicator{Page: total})
	}

	return out
}

// Strings renders indicators for display or comparison.
func Strings(indicators []Indicator) []string {
	out := make([]string, len(indicators))
	for i, ind := range indicators {
		out[i] = ind.String()
	}
	return out
}
