package ahb

import "fmt"

// BoundaryBytes is the address boundary no burst may cross.
const BoundaryBytes = 1024

// The HBURST encodings.
const (
	BurstSingle uint8 = 0
	BurstIncr   uint8 = 1
	BurstWrap4  uint8 = 2
	BurstIncr4  uint8 = 3
	BurstWrap8  uint8 = 4
	BurstIncr8  uint8 = 5
	BurstWrap16 uint8 = 6
	BurstIncr16 uint8 = 7
)

// BurstKind tells how the addresses of a burst progress.
type BurstKind uint8

// The burst kinds.
const (
	// Single is one beat on its own.
	Single BurstKind = iota

	// IncrUnspecified increments for a length chosen by the master.
	IncrUnspecified

	// IncrFixed increments for a fixed number of beats.
	IncrFixed

	// Wrapping increments inside an aligned window and wraps to its base.
	Wrapping
)

func (k BurstKind) String() string {
	switch k {
	case Single:
		return "SINGLE"
	case IncrUnspecified:
		return "INCR"
	case IncrFixed:
		return "INCR-FIXED"
	case Wrapping:
		return "WRAP"
	default:
		return fmt.Sprintf("BurstKind(%d)", uint8(k))
	}
}

var fixedBeats = [4]int{1, 4, 8, 16}

// A Burst is an HBURST code decoded once into its kind and length.
type Burst struct {
	Kind BurstKind

	// Beats is the number of data beats. It is zero for IncrUnspecified,
	// whose length is drawn per burst.
	Beats int
}

// DecodeBurst decodes an HBURST code. Only the low three bits are used.
func DecodeBurst(code uint8) Burst {
	code &= 7

	switch {
	case code == BurstSingle:
		return Burst{Kind: Single, Beats: 1}
	case code == BurstIncr:
		return Burst{Kind: IncrUnspecified}
	case code&1 == 1:
		return Burst{Kind: IncrFixed, Beats: fixedBeats[code>>1]}
	default:
		return Burst{Kind: Wrapping, Beats: fixedBeats[code>>1]}
	}
}

// Code returns the HBURST encoding of the burst.
func (b Burst) Code() uint8 {
	switch b.Kind {
	case Single:
		return BurstSingle
	case IncrUnspecified:
		return BurstIncr
	}

	for i, beats := range fixedBeats {
		if beats != b.Beats || i == 0 {
			continue
		}

		code := uint8(i << 1)
		if b.Kind == IncrFixed {
			code |= 1
		}

		return code
	}

	panic(fmt.Sprintf("ahb: no HBURST code for %s of %d beats", b.Kind, b.Beats))
}

// FixedLength tells if the number of beats is given by the code.
func (b Burst) FixedLength() bool {
	return b.Kind != IncrUnspecified
}

// Wraps tells if the addresses wrap inside an aligned window.
func (b Burst) Wraps() bool {
	return b.Kind == Wrapping
}

func (b Burst) String() string {
	switch b.Kind {
	case Single, IncrUnspecified:
		return b.Kind.String()
	case IncrFixed:
		return fmt.Sprintf("INCR%d", b.Beats)
	default:
		return fmt.Sprintf("WRAP%d", b.Beats)
	}
}

// MaxSizeLog2 returns the largest HSIZE a bus of dataWidth bits supports.
func MaxSizeLog2(dataWidth int) uint8 {
	bytes := dataWidth / 8

	sizeLog2 := uint8(0)
	for bytes > 1 {
		bytes >>= 1
		sizeLog2++
	}

	return sizeLog2
}

// MaxBurstCode returns the largest HBURST code the generator draws for a
// transfer size. With 128-byte beats a 16-beat burst always crosses the
// 1 KiB boundary, so those codes are excluded.
func MaxBurstCode(sizeLog2 uint8) uint8 {
	if sizeLog2 == 7 {
		return BurstIncr8
	}

	return BurstIncr16
}
