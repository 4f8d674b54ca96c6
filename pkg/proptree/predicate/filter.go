package predicate

import "strings"

// blacklist holds symbols that carry no meaning on their own.
var blacklist = map[string]struct{}{
	"":   {},
	"'s": {},
	"'":  {},
	"’s": {},
	"’":  {},
	"s":  {},
}

// Valid reports whether symbol may become a predicate.
func Valid(symbol string) bool {
	_, bad := blacklist[strings.ToLower(strings.TrimSpace(symbol))]
	return !bad
}

// Filter extends the built-in blacklist with configured stop symbols.
type Filter struct {
	stops map[string]struct{}
}

// NewFilter creates a filter rejecting the built-in blacklist plus extra.
func NewFilter(extra []string) *Filter {
	stops := make(map[string]struct{}, len(extra))
	for _, s := range extra {
		stops[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &Filter{stops: stops}
}

// Valid reports whether symbol passes both the blacklist and the stop list.
// A nil filter only applies the blacklist.
func (f *Filter) Valid(symbol string) bool {
	if !Valid(symbol) {
		return false
	}
	if f == nil {
		return true
	}
	_, stop := f.stops[strings.ToLower(strings.TrimSpace(symbol))]
	return !stop
}

// Len returns the number of configured stop symbols.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.stops)
}
