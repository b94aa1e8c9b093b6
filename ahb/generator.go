package ahb

import "fmt"

// RandSource is the random source of a generator. *rand.Rand satisfies it.
// A source must not be shared between generators used from different
// goroutines.
type RandSource interface {
	Float64() float64
	Intn(n int) int
	Uint64() uint64
}

// A Generator produces AHB-Lite3 bus activity, one unit at a time. Apart from
// its random source it keeps no state between calls.
type Generator struct {
	addressWidth int
	dataWidth    int
	maxSizeLog2  uint8

	idleProbability float64
	busyProbability float64
	maxBusyBeats    int

	rand RandSource
}

// AddressWidth returns the number of address bits the generator draws.
func (g *Generator) AddressWidth() int {
	return g.addressWidth
}

// DataWidth returns the data bus width in bits.
func (g *Generator) DataWidth() int {
	return g.dataWidth
}

// Next returns the next unit of bus activity: either a single null transaction
// standing for an idle cycle, or all the beats of one burst.
func (g *Generator) Next() []Transaction {
	if g.rand.Float64() < g.idleProbability {
		return []Transaction{{}}
	}

	sizeLog2 := uint8(g.randInt(0, int(g.maxSizeLog2)))
	code := uint8(g.randInt(0, int(MaxBurstCode(sizeLog2))))

	return g.Burst(sizeLog2, code)
}

// Burst returns a burst of the given transfer size and HBURST code. The
// direction, protection, start address and data are drawn at random.
func (g *Generator) Burst(sizeLog2 uint8, burstCode uint8) []Transaction {
	g.burstMustBeLegal(sizeLog2, burstCode)

	burst := DecodeBurst(burstCode)
	bytesPerBeat := uint64(1) << sizeLog2

	write := g.rand.Float64() < 0.5
	prot := uint8(g.randInt(0, 15))
	address := g.randomAddress() &^ (bytesPerBeat - 1)

	beats := burst.Beats
	if !burst.FixedLength() {
		maxBeats := (BoundaryBytes - address%BoundaryBytes) / bytesPerBeat
		beats = g.randInt(1, int(maxBeats))
	}

	burstBytes := bytesPerBeat * uint64(beats)

	if burst.Kind == IncrFixed {
		address = pullBackToBoundary(address, burstBytes)
	}

	base := address - address%burstBytes

	static := Transaction{
		Write:      write,
		SizeLog2:   sizeLog2,
		BurstCode:  burstCode,
		Protection: prot,
	}

	buffer := make([]Transaction, 0, beats)
	for beat := 0; beat < beats; beat++ {
		if beat > 0 {
			for i := g.busyBeats(); i > 0; i-- {
				buffer = append(buffer, g.beat(static, address, Busy))
			}
		}

		transferType := Seq
		if beat == 0 {
			transferType = NonSeq
		}

		buffer = append(buffer, g.beat(static, address, transferType))

		address += bytesPerBeat
		if burst.Wraps() && address == base+burstBytes {
			address = base
		}
	}

	return buffer
}

func (g *Generator) burstMustBeLegal(sizeLog2 uint8, burstCode uint8) {
	if sizeLog2 > g.maxSizeLog2 {
		panic(fmt.Sprintf("ahb: HSIZE %d exceeds the %d-bit bus",
			sizeLog2, g.dataWidth))
	}

	if burstCode > MaxBurstCode(sizeLog2) {
		panic(fmt.Sprintf("ahb: HBURST %d at HSIZE %d crosses %d bytes",
			burstCode, sizeLog2, BoundaryBytes))
	}
}

// pullBackToBoundary moves an incrementing burst backward, one beat at a
// time, until it ends at or before the next 1 KiB boundary.
func pullBackToBoundary(address, burstBytes uint64) uint64 {
	end := address%BoundaryBytes + burstBytes
	if end <= BoundaryBytes {
		return address
	}

	return address - (end - BoundaryBytes)
}

func (g *Generator) beat(
	static Transaction,
	address uint64,
	transferType TransferType,
) Transaction {
	t := static
	t.Address = address
	t.TransferType = transferType
	t.WriteData = g.randomData()

	return t
}

// busyBeats draws the number of BUSY cycles inserted before a beat. A draw r
// above 1-p maps linearly onto 0..maxBusyBeats.
func (g *Generator) busyBeats() int {
	if g.busyProbability <= 0 || g.maxBusyBeats == 0 {
		return 0
	}

	threshold := 1 - g.busyProbability

	r := g.rand.Float64()
	if r < threshold {
		return 0
	}

	n := int((r - threshold) * float64(g.maxBusyBeats+1) / g.busyProbability)

	return min(n, g.maxBusyBeats)
}

func (g *Generator) randomAddress() uint64 {
	addr := g.rand.Uint64()
	if g.addressWidth < 64 {
		addr &= (uint64(1) << g.addressWidth) - 1
	}

	return addr
}

func (g *Generator) randomData() []byte {
	data := make([]byte, g.dataWidth/8)

	for i := 0; i < len(data); i += 8 {
		word := g.rand.Uint64()
		for j := i; j < len(data) && j < i+8; j++ {
			data[j] = byte(word)
			word >>= 8
		}
	}

	return data
}

// randInt returns a uniform integer in [low, high].
func (g *Generator) randInt(low, high int) int {
	return low + g.rand.Intn(high-low+1)
}
