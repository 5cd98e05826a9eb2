// Package header is a small ordered, case-insensitive multimap shared by
// the request builder and the response parser, so both sides of the wire
// preserve header order and duplicate entries the same way.
package header

import "strings"

// Pair is one header line: the name as it was written/received, and its
// value.
type Pair struct {
	Name  string
	Value string
}

// Header is an ordered multimap: insertion order and duplicates survive,
// but lookups are case-insensitive, per RFC 2616.
type Header struct {
	pairs []Pair
}

// Add appends a new header line, preserving any existing entries with the
// same name (a true multimap add).
func (h *Header) Add(name, value string) {
	h.pairs = append(h.pairs, Pair{Name: name, Value: value})
}

// Set replaces all existing entries for name with a single new entry,
// preserving the position of the first existing entry if any.
func (h *Header) Set(name, value string) {
	lower := strings.ToLower(name)
	for i := range h.pairs {
		if strings.ToLower(h.pairs[i].Name) == lower {
			h.pairs[i].Value = value
			h.pairs = append(h.pairs[:i+1], removeName(h.pairs[i+1:], lower)...)
			return
		}
	}
	h.pairs = append(h.pairs, Pair{Name: name, Value: value})
}

func removeName(pairs []Pair, lower string) []Pair {
	out := pairs[:0]
	for _, p := range pairs {
		if strings.ToLower(p.Name) != lower {
			out = append(out, p)
		}
	}
	return out
}

// FoldLast appends a continuation line to the most recently added pair's
// value, joined by a single space, per RFC 2616 header folding (a
// continuation line begins with SP or HTAB).
func (h *Header) FoldLast(continuation string) bool {
	if len(h.pairs) == 0 {
		return false
	}
	last := &h.pairs[len(h.pairs)-1]
	last.Value = last.Value + " " + strings.TrimSpace(continuation)
	return true
}

// Get returns the value of the first entry matching name (case-insensitive),
// and whether any entry was found.
func (h *Header) Get(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, p := range h.pairs {
		if strings.ToLower(p.Name) == lower {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value for name (case-insensitive), in order.
func (h *Header) Values(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for _, p := range h.pairs {
		if strings.ToLower(p.Name) == lower {
			out = append(out, p.Value)
		}
	}
	return out
}

// Has reports whether name is present, case-insensitively.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// All returns every header pair, in wire order.
func (h *Header) All() []Pair {
	return h.pairs
}

// Len returns the number of header lines (counting duplicates).
func (h *Header) Len() int {
	return len(h.pairs)
}
