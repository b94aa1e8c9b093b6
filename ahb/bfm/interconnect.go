package bfm

import (
	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/timing"
)

// Interconnect closes a bus with one master and one slave. It selects the
// slave permanently and stretches transfers at random: HREADY is the slave's
// HREADYOUT masked by a random decision redrawn at every edge.
type Interconnect struct {
	bus   *Signals
	ready randomizer.Bool
	mask  bool
}

// NewInterconnect creates an interconnect. ready decides, at every edge, if
// the interconnect lets HREADYOUT through.
func NewInterconnect(bus *Signals, ready randomizer.Bool) *Interconnect {
	c := &Interconnect{bus: bus, ready: ready, mask: true}
	bus.HSEL.Force(true)

	return c
}

// Reset selects the slave and opens the mask.
func (c *Interconnect) Reset() {
	c.mask = true
	c.bus.HSEL.Set(true)
}

// RisingEdge redraws the mask.
func (c *Interconnect) RisingEdge(_ timing.VTimeInCycle) {
	c.mask = c.ready.Get()
}

// Settle drives HREADY from the mask and HREADYOUT.
func (c *Interconnect) Settle() {
	c.bus.HREADY.Force(c.mask && c.bus.HREADYOUT.Get())
}
