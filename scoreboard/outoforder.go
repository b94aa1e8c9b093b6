package scoreboard

import (
	"fmt"
	"sort"
	"strings"
)

// OutOfOrder compares items that share an ordering ID. Items with the same ID
// are compared in order; items with different IDs may complete in any order.
type OutOfOrder[T any, K comparable] struct {
	base[T]

	refs map[K][]T
	uuts map[K][]T
}

// NewOutOfOrder creates an out-of-order scoreboard.
func NewOutOfOrder[T any, K comparable](
	name string,
	match MatchFunc[T],
) *OutOfOrder[T, K] {
	return &OutOfOrder[T, K]{
		base: base[T]{name: name, match: match},
		refs: make(map[K][]T),
		uuts: make(map[K][]T),
	}
}

// RefPush adds a reference item under an ID.
func (s *OutOfOrder[T, K]) RefPush(ref T, id K) {
	s.refs[id] = append(s.refs[id], ref)
	s.update(id)
}

// UUTPush adds a design item under an ID.
func (s *OutOfOrder[T, K]) UUTPush(uut T, id K) {
	s.uuts[id] = append(s.uuts[id], uut)
	s.update(id)
}

// PendingIDs returns the number of IDs with items waiting for a counterpart.
func (s *OutOfOrder[T, K]) PendingIDs() int {
	return len(s.refs) + len(s.uuts)
}

func (s *OutOfOrder[T, K]) update(id K) {
	refs := s.refs[id]
	uuts := s.uuts[id]

	for len(refs) > 0 && len(uuts) > 0 {
		ref := refs[0]
		uut := uuts[0]
		refs = refs[1:]
		uuts = uuts[1:]

		s.compare(uut, ref)
	}

	s.store(s.refs, id, refs)
	s.store(s.uuts, id, uuts)
}

func (s *OutOfOrder[T, K]) store(m map[K][]T, id K, items []T) {
	if len(items) == 0 {
		delete(m, id)
		return
	}

	m[id] = items
}

// Check returns an error if any pair mismatched or any item is left over.
func (s *OutOfOrder[T, K]) Check() error {
	sb := strings.Builder{}
	describeMap(&sb, "REF", s.refs)
	describeMap(&sb, "UUT", s.uuts)

	return s.check(sb.String())
}

func describeMap[T any, K comparable](
	sb *strings.Builder,
	kind string,
	m map[K][]T,
) {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})

	for _, k := range keys {
		describe(sb, fmt.Sprintf("%s[%v]", kind, k), m[k])
	}
}
