// Package pagination computes page counts and the compact page-number list
// shown by navigation controls.
package pagination

import "strconv"

// MaxVisible is the largest page count rendered without ellipses.
const MaxVisible = 5

// Ellipsis is the rendered form of a gap in the page list.
const Ellipsis = "..."

// Item is one entry of the page list: either a page number or an ellipsis.
type Item struct {
	Page     int  `json:"page,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

func (i Item) String() string {
	if i.Ellipsis {
		return Ellipsis
	}
	return strconv.Itoa(i.Page)
}

// TotalPages returns ceil(totalItems / perPage). A non-positive perPage yields 0.
func TotalPages(totalItems, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + perPage - 1) / perPage
}

// Offset returns the index of the first item on a 1-based page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// Pages returns the page list for current out of total pages.
// The first and last page are always present when total >= 1, and the list
// never exceeds seven entries. current is not clamped.
func Pages(current, total int) []Item {
	if total <= 0 {
		return []Item{}
	}
	if total <= MaxVisible {
		out := make([]Item, 0, total)
		for p := 1; p <= total; p++ {
			out = append(out, Item{Page: p})
		}
		return out
	}

	out := make([]Item, 0, 7)
	out = append(out, Item{Page: 1})
	if current > 3 {
		out = append(out, Item{Ellipsis: true})
	}
	start := max(2, current-1)
	end := min(total-1, current+1)
	for p := start; p <= end; p++ {
		out = append(out, Item{Page: p})
	}
	if current < total-2 {
		out = append(out, Item{Ellipsis: true})
	}
	out = append(out, Item{Page: total})
	return out
}

// Strings renders a page list, mostly for logs and the CLI.
func Strings(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}
