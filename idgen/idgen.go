// Package idgen provides the ID generators used to name recorded units of bus
// activity.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator whose first emitted ID is "1". Sequential
// IDs keep seeded runs reproducible.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewParallel returns a generator that is safe to share between goroutines
// without coordination. The IDs are globally unique but not deterministic.
func NewParallel() Generator {
	return parallelGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.next, 1)
	return strconv.FormatUint(idNumber, 10)
}

type parallelGenerator struct{}

func (g parallelGenerator) Generate() string {
	return xid.New().String()
}
