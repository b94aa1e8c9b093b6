package stream

import (
	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/timing"
)

// FlowDriver drives a flow: a new payload in every cycle valid is drawn high,
// with no back-pressure.
type FlowDriver[T any] struct {
	ch    *Channel[T]
	valid randomizer.Bool
	next  func() T
	onNew []func(T)
}

// NewFlowDriver creates a flow driver.
func NewFlowDriver[T any](
	ch *Channel[T],
	valid randomizer.Bool,
	next func() T,
) *FlowDriver[T] {
	return &FlowDriver[T]{ch: ch, valid: valid, next: next}
}

// OnNew registers a function called with every payload driven.
func (d *FlowDriver[T]) OnNew(f func(T)) {
	d.onNew = append(d.onNew, f)
}

// Reset lowers valid.
func (d *FlowDriver[T]) Reset() {
	d.ch.Valid.Set(false)
}

// RisingEdge drives the next cycle.
func (d *FlowDriver[T]) RisingEdge(_ timing.VTimeInCycle) {
	if !d.valid.Get() {
		d.ch.Valid.Set(false)
		return
	}

	p := d.next()
	d.ch.Valid.Set(true)
	d.ch.Payload.Set(p)

	for _, f := range d.onNew {
		f(p)
	}
}

// FlowMonitor reports the payload of every cycle a flow is valid, while it is
// monitoring.
type FlowMonitor[T any] struct {
	ch         *Channel[T]
	monitoring bool
	listeners  []func(T)
}

// NewFlowMonitor creates a monitor. It does not monitor until Start is called.
func NewFlowMonitor[T any](ch *Channel[T]) *FlowMonitor[T] {
	return &FlowMonitor[T]{ch: ch}
}

// AddListener registers a function called with every valid payload.
func (m *FlowMonitor[T]) AddListener(f func(T)) {
	m.listeners = append(m.listeners, f)
}

// Start begins monitoring at the next edge.
func (m *FlowMonitor[T]) Start() {
	m.monitoring = true
}

// Stop ends monitoring.
func (m *FlowMonitor[T]) Stop() {
	m.monitoring = false
}

// Monitoring tells if the monitor is active.
func (m *FlowMonitor[T]) Monitoring() bool {
	return m.monitoring
}

// RisingEdge samples the flow.
func (m *FlowMonitor[T]) RisingEdge(_ timing.VTimeInCycle) {
	if !m.monitoring || !m.ch.Valid.Get() {
		return
	}

	p := m.ch.Payload.Get()
	for _, f := range m.listeners {
		f(p)
	}
}
