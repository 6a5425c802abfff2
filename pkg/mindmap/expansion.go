package mindmap

import "sort"

// ExpansionSet is the immutable set of node ids whose children are visible.
// Every update returns a new set; a value held by a caller never changes.
// The zero value is an empty set.
type ExpansionSet struct {
	ids map[string]struct{}
}

// NewExpansionSet returns a set containing ids.
func NewExpansionSet(ids ...string) ExpansionSet {
	s := ExpansionSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// ExpandAll returns a set containing every node id in m.
func ExpandAll(m *Map) ExpansionSet {
	return NewExpansionSet(m.IDs()...)
}

// Has reports whether id is expanded.
func (s ExpansionSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of expanded ids.
func (s ExpansionSet) Len() int {
	return len(s.ids)
}

// Toggle returns a copy of s with the membership of id flipped.
func (s ExpansionSet) Toggle(id string) ExpansionSet {
	next := ExpansionSet{ids: make(map[string]struct{}, len(s.ids)+1)}
	for k := range s.ids {
		next.ids[k] = struct{}{}
	}
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// IDs returns the expanded ids in sorted order.
func (s ExpansionSet) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Equal reports whether both sets hold the same ids.
func (s ExpansionSet) Equal(o ExpansionSet) bool {
	if len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := o.ids[id]; !ok {
			return false
		}
	}
	return true
}
