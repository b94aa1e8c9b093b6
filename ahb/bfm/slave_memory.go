package bfm

import (
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/memory"
	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/timing"
)

// ErrProtocol reports a bus protocol violation seen by a model.
var ErrProtocol = errors.New("AHB-Lite3 protocol violation")

type dataPhase struct {
	valid   bool
	write   bool
	address uint64
	size    uint64
}

// SlaveMemory is a memory slave mapped at [base, base+store capacity). It
// inserts random wait states on NONSEQ and SEQ transfers and answers IDLE and
// BUSY transfers with zero wait states.
type SlaveMemory struct {
	name  string
	bus   *Signals
	store memory.Store
	base  uint64
	ready randomizer.Bool

	busy  bool
	phase dataPhase

	reads  uint64
	writes uint64
	errs   []error
}

// NewSlaveMemory creates a memory slave on bus backed by store. The store
// sees addresses relative to base. ready decides, at every edge of a transfer,
// if the slave completes it.
func NewSlaveMemory(
	name string,
	bus *Signals,
	store memory.Store,
	base uint64,
	ready randomizer.Bool,
) *SlaveMemory {
	return &SlaveMemory{
		name:  name,
		bus:   bus,
		store: store,
		base:  base,
		ready: ready,
	}
}

// Name returns the name of the slave.
func (s *SlaveMemory) Name() string {
	return s.name
}

// Reads returns the number of read transfers served from the store.
func (s *SlaveMemory) Reads() uint64 {
	return s.reads
}

// Writes returns the number of write transfers stored.
func (s *SlaveMemory) Writes() uint64 {
	return s.writes
}

// Errors returns the problems the slave detected.
func (s *SlaveMemory) Errors() []error {
	return s.errs
}

// Reset ends any transfer and makes the slave ready.
func (s *SlaveMemory) Reset() {
	s.busy = false
	s.phase = dataPhase{}
	s.bus.HREADYOUT.Set(true)
	s.bus.HRESP.Set(false)
	s.bus.HRDATA.Set(make([]byte, s.bus.BusBytes()))
}

// RisingEdge updates the wait states, completes the pending data phase and
// samples the address phase.
func (s *SlaveMemory) RisingEdge(cycle timing.VTimeInCycle) {
	s.updateReady(cycle)

	if !s.bus.HREADY.Get() {
		return
	}

	if s.phase.valid && s.phase.write {
		s.completeWrite()
	}

	s.sampleAddressPhase()
}

func (s *SlaveMemory) updateReady(cycle timing.VTimeInCycle) {
	hready := s.bus.HREADY.Get()

	busyNew := s.busy
	if hready {
		busyNew = s.bus.transferring()
	}

	if (s.busy || busyNew) && hready && !s.bus.HREADYOUT.Get() {
		s.fail(errors.Wrapf(ErrProtocol,
			"%s: HREADYOUT low while HREADY high at cycle %d", s.name, cycle))
	}

	s.busy = busyNew

	if s.busy {
		s.bus.HREADYOUT.Set(s.ready.Get())
	} else {
		s.bus.HREADYOUT.Set(true)
	}
}

func (s *SlaveMemory) completeWrite() {
	lane := s.bus.Lane(s.phase.address)
	data := s.bus.HWDATA.Get()[lane : lane+int(s.phase.size)]

	err := s.access(s.phase.address, s.phase.size, func(addr uint64) error {
		return s.store.Write(addr, data)
	})
	if err != nil {
		s.fail(err)
		return
	}

	s.writes++
}

func (s *SlaveMemory) sampleAddressPhase() {
	t := s.bus.AddressPhase()

	s.phase = dataPhase{
		valid:   s.bus.transferring(),
		write:   t.Write,
		address: t.Address,
		size:    t.Bytes(),
	}

	rdata := make([]byte, s.bus.BusBytes())
	if s.phase.valid && !s.phase.write {
		s.read(rdata)
	}

	s.bus.HRDATA.Set(rdata)
}

func (s *SlaveMemory) read(rdata []byte) {
	lane := s.bus.Lane(s.phase.address)

	err := s.access(s.phase.address, s.phase.size, func(addr uint64) error {
		data, err := s.store.Read(addr, s.phase.size)
		if err != nil {
			return err
		}

		copy(rdata[lane:], data)

		return nil
	})
	if err != nil {
		s.fail(err)
		return
	}

	s.reads++
}

func (s *SlaveMemory) access(
	address uint64,
	size uint64,
	f func(addr uint64) error,
) error {
	if address < s.base {
		return errors.Wrapf(memory.ErrOutOfRange,
			"%s: 0x%x below base 0x%x", s.name, address, s.base)
	}

	err := f(address - s.base)
	if err != nil {
		return errors.Wrapf(err, "%s: %d bytes at 0x%x", s.name, size, address)
	}

	return nil
}

func (s *SlaveMemory) fail(err error) {
	log.Printf("%v", err)
	s.errs = append(s.errs, err)
}
