package bfm

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/scoreboard"
	"github.com/sarchlab/ahblite/timing"
)

// ReadChecker samples HRDATA at the end of every read data phase and pushes
// the active byte lanes into a scoreboard.
type ReadChecker struct {
	bus   *Signals
	reads *scoreboard.InOrder[ReadBeat]

	incoming bool
	address  uint64
	sizeLog2 uint8
	checked  uint64
}

// NewReadChecker creates a read checker feeding reads.
func NewReadChecker(
	bus *Signals,
	reads *scoreboard.InOrder[ReadBeat],
) *ReadChecker {
	return &ReadChecker{bus: bus, reads: reads}
}

// Checked returns the number of read beats sampled.
func (c *ReadChecker) Checked() uint64 {
	return c.checked
}

// Reset forgets the read in flight.
func (c *ReadChecker) Reset() {
	c.incoming = false
}

// RisingEdge samples the data phase that ends and the address phase that
// starts.
func (c *ReadChecker) RisingEdge(_ timing.VTimeInCycle) {
	if !c.bus.HREADY.Get() {
		return
	}

	if c.incoming {
		lane := c.bus.Lane(c.address)
		size := 1 << c.sizeLog2

		data := make([]byte, size)
		copy(data, c.bus.HRDATA.Get()[lane:lane+size])

		c.reads.UUTPush(ReadBeat{
			Address:  c.address,
			SizeLog2: c.sizeLog2,
			Data:     data,
		})
		c.checked++
	}

	c.incoming = c.bus.transferring() && !c.bus.HWRITE.Get()
	c.address = c.bus.HADDR.Get()
	c.sizeLog2 = c.bus.HSIZE.Get()
}

// ProtocolChecker watches the address phases accepted on the bus, groups
// them into units and verifies each unit with ahb.CheckBurst. It also
// verifies that the master holds a NONSEQ or SEQ address phase during wait
// states.
type ProtocolChecker struct {
	name string
	bus  *Signals

	burst  []ahb.Transaction
	waited bool
	last   ahb.Transaction
	units  uint64
	errs   []error
}

// NewProtocolChecker creates a protocol checker for bus.
func NewProtocolChecker(name string, bus *Signals) *ProtocolChecker {
	return &ProtocolChecker{name: name, bus: bus}
}

// Name returns the name of the checker.
func (c *ProtocolChecker) Name() string {
	return c.name
}

// Units returns the number of units verified.
func (c *ProtocolChecker) Units() uint64 {
	return c.units
}

// Errors returns the violations found.
func (c *ProtocolChecker) Errors() []error {
	return c.errs
}

// Reset drops the burst being collected.
func (c *ProtocolChecker) Reset() {
	c.burst = nil
	c.waited = false
}

// RisingEdge samples the address phase.
func (c *ProtocolChecker) RisingEdge(cycle timing.VTimeInCycle) {
	t := c.bus.AddressPhase()

	if c.waited && c.last.TransferType.CarriesData() &&
		!sameAddressPhase(t, c.last) {
		c.fail(errors.Wrapf(ErrProtocol,
			"%s: address phase changed during a wait state at cycle %d, "+
				"%s became %s", c.name, cycle, c.last, t))
	}

	c.last = t
	c.waited = !c.bus.HREADY.Get()

	if c.waited {
		return
	}

	switch t.TransferType {
	case ahb.NonSeq:
		c.flush()
		c.burst = []ahb.Transaction{t}
	case ahb.Seq, ahb.Busy:
		if len(c.burst) == 0 {
			c.fail(errors.Wrapf(ErrProtocol,
				"%s: %s outside a burst at cycle %d", c.name, t, cycle))
			return
		}

		c.burst = append(c.burst, t)
	default:
		c.flush()
		c.verify([]ahb.Transaction{t})
	}
}

func sameAddressPhase(a, b ahb.Transaction) bool {
	return a.Address == b.Address && a.Write == b.Write &&
		a.SizeLog2 == b.SizeLog2 && a.BurstCode == b.BurstCode &&
		a.Protection == b.Protection && a.TransferType == b.TransferType
}

func (c *ProtocolChecker) flush() {
	if len(c.burst) == 0 {
		return
	}

	c.verify(c.burst)
	c.burst = nil
}

func (c *ProtocolChecker) verify(unit []ahb.Transaction) {
	c.units++

	err := ahb.CheckBurst(unit, c.bus.DataWidth())
	if err != nil {
		c.fail(errors.Wrapf(err, "%s: unit starting with %s", c.name, unit[0]))
	}
}

func (c *ProtocolChecker) fail(err error) {
	log.Printf("%v", err)
	c.errs = append(c.errs, err)
}
