package scoreboard

import "strings"

// InOrder compares items in the order they arrive. The n-th design item is
// compared against the n-th reference item.
type InOrder[T any] struct {
	base[T]

	refs []T
	uuts []T
}

// NewInOrder creates an in-order scoreboard.
func NewInOrder[T any](name string, match MatchFunc[T]) *InOrder[T] {
	return &InOrder[T]{
		base: base[T]{name: name, match: match},
	}
}

// RefPush adds a reference item.
func (s *InOrder[T]) RefPush(ref T) {
	s.refs = append(s.refs, ref)
	s.update()
}

// UUTPush adds a design item.
func (s *InOrder[T]) UUTPush(uut T) {
	s.uuts = append(s.uuts, uut)
	s.update()
}

// Pending returns the number of reference and design items waiting for a
// counterpart.
func (s *InOrder[T]) Pending() (refs, uuts int) {
	return len(s.refs), len(s.uuts)
}

func (s *InOrder[T]) update() {
	for len(s.refs) > 0 && len(s.uuts) > 0 {
		ref := s.refs[0]
		uut := s.uuts[0]
		s.refs = s.refs[1:]
		s.uuts = s.uuts[1:]

		s.compare(uut, ref)
	}
}

// Check returns an error if any pair mismatched or any item is left over.
func (s *InOrder[T]) Check() error {
	sb := strings.Builder{}
	describe(&sb, "REF", s.refs)
	describe(&sb, "UUT", s.uuts)

	return s.check(sb.String())
}
