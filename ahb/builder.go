package ahb

import (
	"fmt"
	"math/rand"
)

// MaxDataWidth is the widest data bus AHB-Lite3 defines, in bits.
const MaxDataWidth = 1024

// GeneratorBuilder builds generators.
type GeneratorBuilder struct {
	addressWidth    int
	dataWidth       int
	idleProbability float64
	busyProbability float64
	maxBusyBeats    int
	seed            int64
	source          RandSource
}

// MakeGeneratorBuilder creates a builder for a 32-bit address, 32-bit data
// bus, with the default idle and BUSY distributions.
func MakeGeneratorBuilder() GeneratorBuilder {
	return GeneratorBuilder{
		addressWidth:    32,
		dataWidth:       32,
		idleProbability: 0.8,
		busyProbability: 0.2,
		maxBusyBeats:    3,
	}
}

// WithAddressWidth sets the number of address bits.
func (b GeneratorBuilder) WithAddressWidth(bits int) GeneratorBuilder {
	b.addressWidth = bits
	return b
}

// WithDataWidth sets the data bus width in bits.
func (b GeneratorBuilder) WithDataWidth(bits int) GeneratorBuilder {
	b.dataWidth = bits
	return b
}

// WithIdleProbability sets the probability that a call returns an idle cycle
// instead of a burst.
func (b GeneratorBuilder) WithIdleProbability(p float64) GeneratorBuilder {
	b.idleProbability = p
	return b
}

// WithBusyProbability sets the probability that a draw before a beat falls in
// the BUSY band.
func (b GeneratorBuilder) WithBusyProbability(p float64) GeneratorBuilder {
	b.busyProbability = p
	return b
}

// WithMaxBusyBeats sets the largest number of BUSY cycles inserted before a
// beat.
func (b GeneratorBuilder) WithMaxBusyBeats(n int) GeneratorBuilder {
	b.maxBusyBeats = n
	return b
}

// WithoutBusyBeats disables BUSY insertion.
func (b GeneratorBuilder) WithoutBusyBeats() GeneratorBuilder {
	b.busyProbability = 0
	return b
}

// WithSeed makes each built generator own a fresh *rand.Rand seeded with seed.
func (b GeneratorBuilder) WithSeed(seed int64) GeneratorBuilder {
	b.seed = seed
	b.source = nil

	return b
}

// WithRandSource sets the random source. Every generator built from this
// builder shares the source.
func (b GeneratorBuilder) WithRandSource(src RandSource) GeneratorBuilder {
	b.source = src
	return b
}

func (b GeneratorBuilder) parametersMustBeValid() {
	if b.addressWidth < 1 || b.addressWidth > 64 {
		panic(fmt.Sprintf("ahb: address width %d is not in [1, 64]",
			b.addressWidth))
	}

	if b.dataWidth < 8 || b.dataWidth > MaxDataWidth ||
		b.dataWidth&(b.dataWidth-1) != 0 {
		panic(fmt.Sprintf("ahb: data width %d is not a power of two "+
			"in [8, %d]", b.dataWidth, MaxDataWidth))
	}

	if b.idleProbability < 0 || b.idleProbability > 1 {
		panic("ahb: idle probability must be in [0, 1]")
	}

	if b.busyProbability < 0 || b.busyProbability > 1 {
		panic("ahb: busy probability must be in [0, 1]")
	}

	if b.maxBusyBeats < 0 {
		panic("ahb: max busy beats cannot be negative")
	}
}

// Build creates a generator. It panics if the configuration is invalid.
func (b GeneratorBuilder) Build() *Generator {
	b.parametersMustBeValid()

	src := b.source
	if src == nil {
		src = rand.New(rand.NewSource(b.seed))
	}

	return &Generator{
		addressWidth:    b.addressWidth,
		dataWidth:       b.dataWidth,
		maxSizeLog2:     MaxSizeLog2(b.dataWidth),
		idleProbability: b.idleProbability,
		busyProbability: b.busyProbability,
		maxBusyBeats:    b.maxBusyBeats,
		rand:            src,
	}
}
