// Package bfm provides bus functional models that play AHB-Lite3 traffic on
// a cycle-accurate bus.
//
// All models share one Signals bundle and are registered on a
// timing.ClockDomain. At every rising edge each sequential model samples the
// current wire values and sets the next ones. The bundle then commits, and the
// combinational models settle.
package bfm

import (
	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/signal"
)

// Signals holds the wires of an AHB-Lite3 bus with a single master and a
// single slave.
type Signals struct {
	dataWidth int

	HADDR     *signal.Reg[uint64]
	HWRITE    *signal.Reg[bool]
	HSIZE     *signal.Reg[uint8]
	HBURST    *signal.Reg[uint8]
	HPROT     *signal.Reg[uint8]
	HTRANS    *signal.Reg[ahb.TransferType]
	HMASTLOCK *signal.Reg[bool]
	HWDATA    *signal.Reg[[]byte]

	HSEL      *signal.Reg[bool]
	HREADY    *signal.Reg[bool]
	HREADYOUT *signal.Reg[bool]
	HRESP     *signal.Reg[bool]
	HRDATA    *signal.Reg[[]byte]

	all signal.Bundle
}

// NewSignals creates an idle bus of dataWidth data bits. HREADY and HREADYOUT
// start high.
func NewSignals(dataWidth int) *Signals {
	s := &Signals{
		dataWidth: dataWidth,
		HADDR:     signal.NewReg[uint64](0),
		HWRITE:    signal.NewReg(false),
		HSIZE:     signal.NewReg[uint8](0),
		HBURST:    signal.NewReg[uint8](0),
		HPROT:     signal.NewReg[uint8](0),
		HTRANS:    signal.NewReg(ahb.Idle),
		HMASTLOCK: signal.NewReg(false),
		HWDATA:    signal.NewReg(make([]byte, dataWidth/8)),
		HSEL:      signal.NewReg(false),
		HREADY:    signal.NewReg(true),
		HREADYOUT: signal.NewReg(true),
		HRESP:     signal.NewReg(false),
		HRDATA:    signal.NewReg(make([]byte, dataWidth/8)),
	}

	s.all = signal.Bundle{
		s.HADDR, s.HWRITE, s.HSIZE, s.HBURST, s.HPROT, s.HTRANS,
		s.HMASTLOCK, s.HWDATA, s.HSEL, s.HREADY, s.HREADYOUT, s.HRESP,
		s.HRDATA,
	}

	return s
}

// DataWidth returns the width of HWDATA and HRDATA in bits.
func (s *Signals) DataWidth() int {
	return s.dataWidth
}

// BusBytes returns the number of byte lanes.
func (s *Signals) BusBytes() int {
	return s.dataWidth / 8
}

// Commit makes the next value of every wire current.
func (s *Signals) Commit() {
	s.all.Commit()
}

// Drive sets the next address phase from a transaction. HWDATA is not
// touched, as it belongs to the data phase of the previous transfer.
func (s *Signals) Drive(t ahb.Transaction) {
	s.HADDR.Set(t.Address)
	s.HWRITE.Set(t.Write)
	s.HSIZE.Set(t.SizeLog2)
	s.HBURST.Set(t.BurstCode)
	s.HPROT.Set(t.Protection)
	s.HTRANS.Set(t.TransferType)
	s.HMASTLOCK.Set(false)
}

// Idle drives zero on every master output.
func (s *Signals) Idle() {
	s.Drive(ahb.Transaction{})
	s.HWDATA.Set(make([]byte, s.BusBytes()))
}

// AddressPhase returns the address phase currently on the bus.
func (s *Signals) AddressPhase() ahb.Transaction {
	return ahb.Transaction{
		Address:      s.HADDR.Get(),
		Write:        s.HWRITE.Get(),
		SizeLog2:     s.HSIZE.Get(),
		BurstCode:    s.HBURST.Get(),
		Protection:   s.HPROT.Get(),
		TransferType: s.HTRANS.Get(),
	}
}

// Lane returns the first byte lane used by an access at address.
func (s *Signals) Lane(address uint64) int {
	return int(address % uint64(s.BusBytes()))
}

// transferring tells if the current address phase selects the slave for a
// NONSEQ or SEQ transfer.
func (s *Signals) transferring() bool {
	return s.HSEL.Get() && s.HTRANS.Get().CarriesData()
}
