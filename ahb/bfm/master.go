package bfm

import (
	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/timing"
)

// A TransactionSource provides units of bus activity. *ahb.Generator is one.
type TransactionSource interface {
	Next() []ahb.Transaction
}

// HookPosIssue triggers when the master puts a transaction on the address
// phase. The hook item is the ahb.Transaction.
var HookPosIssue = &timing.HookPos{Name: "Issue"}

// Master plays the transactions of a source on the bus. It moves to the next
// transaction at every edge that samples HREADY high and drives the write
// data of a transaction one accepted cycle after its address.
type Master struct {
	*timing.HookableBase

	name    string
	bus     *Signals
	source  TransactionSource
	pending []ahb.Transaction
	wdata   []byte
	issued  uint64

	draining     bool
	trailingIdle int
}

// NewMaster creates a master that drives bus with the transactions of source.
func NewMaster(name string, bus *Signals, source TransactionSource) *Master {
	return &Master{
		HookableBase: timing.NewHookableBase(),
		name:         name,
		bus:          bus,
		source:       source,
		wdata:        make([]byte, bus.BusBytes()),
	}
}

// Name returns the name of the master.
func (m *Master) Name() string {
	return m.name
}

// Issued returns the number of transactions put on the bus.
func (m *Master) Issued() uint64 {
	return m.issued
}

// Drain makes the master finish the unit it is playing and then idle the bus
// instead of asking the source for more.
func (m *Master) Drain() {
	m.draining = true
}

// Quiet tells if the master is draining and every transfer it issued has
// completed its data phase.
func (m *Master) Quiet() bool {
	return m.draining && len(m.pending) == 0 && m.trailingIdle >= 2
}

// Reset drops the buffered transactions and idles the bus.
func (m *Master) Reset() {
	m.pending = nil
	m.trailingIdle = 0
	m.wdata = make([]byte, m.bus.BusBytes())
	m.bus.Idle()
}

// RisingEdge issues the next transaction if the bus is ready.
func (m *Master) RisingEdge(cycle timing.VTimeInCycle) {
	if !m.bus.HREADY.Get() {
		return
	}

	for len(m.pending) == 0 {
		if m.draining {
			m.pending = []ahb.Transaction{{}}
			break
		}

		m.pending = m.source.Next()
	}

	t := m.pending[0]
	m.pending = m.pending[1:]

	m.bus.Drive(t)
	m.bus.HWDATA.Set(m.wdata)

	m.wdata = t.WriteData
	if len(m.wdata) != m.bus.BusBytes() {
		m.wdata = make([]byte, m.bus.BusBytes())
		copy(m.wdata, t.WriteData)
	}

	m.issued++
	if t.IsNull() {
		m.trailingIdle++
	} else {
		m.trailingIdle = 0
	}

	m.InvokeHook(timing.HookCtx{
		Domain: m,
		Pos:    HookPosIssue,
		Item:   t,
		Detail: cycle,
	})
}
