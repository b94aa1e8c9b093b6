// Package scoreboard pairs the items a design under test produces with the
// items a reference model predicts, and reports the differences.
package scoreboard

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMismatch reports a pair of items that do not match.
	ErrMismatch = errors.New("mismatch")

	// ErrNotEmpty reports items left without a counterpart.
	ErrNotEmpty = errors.New("scoreboard not empty")
)

// MatchFunc decides if a design item matches its reference.
type MatchFunc[T any] func(uut, ref T) bool

// Listener is told about every comparison.
type Listener[T any] func(uut, ref T, equal bool)

type base[T any] struct {
	name       string
	match      MatchFunc[T]
	listeners  []Listener[T]
	matched    int
	mismatches []error
}

// Name returns the name of the scoreboard.
func (b *base[T]) Name() string {
	return b.name
}

// AddListener registers a function called after each comparison.
func (b *base[T]) AddListener(l Listener[T]) {
	b.listeners = append(b.listeners, l)
}

// Matched returns the number of pairs that matched.
func (b *base[T]) Matched() int {
	return b.matched
}

// Mismatches returns the recorded mismatches.
func (b *base[T]) Mismatches() []error {
	return b.mismatches
}

func (b *base[T]) compare(uut, ref T) {
	equal := b.match(uut, ref)
	for _, l := range b.listeners {
		l(uut, ref, equal)
	}

	if equal {
		b.matched++
		return
	}

	log.Printf("Mismatch detected in %s", b.name)

	b.mismatches = append(b.mismatches, errors.Wrapf(ErrMismatch,
		"%s: uut %v, ref %v", b.name, uut, ref))
}

func (b *base[T]) check(leftover string) error {
	if len(b.mismatches) > 0 {
		return errors.Wrapf(b.mismatches[0], "%d mismatches, first",
			len(b.mismatches))
	}

	if leftover != "" {
		return errors.Wrapf(ErrNotEmpty,
			"%s has some remaining transactions:\n%s", b.name, leftover)
	}

	return nil
}

func describe[T any](sb *strings.Builder, kind string, items []T) {
	for _, e := range items {
		fmt.Fprintf(sb, "%s:\n%v\n", kind, e)
	}
}
