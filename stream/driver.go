package stream

import (
	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/timing"
)

// Driver pushes payloads on a channel at random times. Once valid is raised
// the payload is held until the reader accepts it.
type Driver[T any] struct {
	ch    *Channel[T]
	valid randomizer.Bool
	next  func() T
	onNew []func(T)
	sent  uint64
}

// NewDriver creates a driver. next provides the payloads, valid decides when
// to offer a new one.
func NewDriver[T any](
	ch *Channel[T],
	valid randomizer.Bool,
	next func() T,
) *Driver[T] {
	return &Driver[T]{ch: ch, valid: valid, next: next}
}

// OnNew registers a function called with every payload put on the channel.
func (d *Driver[T]) OnNew(f func(T)) {
	d.onNew = append(d.onNew, f)
}

// Sent returns the number of payloads offered so far.
func (d *Driver[T]) Sent() uint64 {
	return d.sent
}

// Reset lowers valid.
func (d *Driver[T]) Reset() {
	d.ch.Valid.Set(false)
}

// RisingEdge retires an accepted payload and may offer the next one.
func (d *Driver[T]) RisingEdge(_ timing.VTimeInCycle) {
	ready := d.ch.Ready.Get()
	if ready {
		d.ch.Valid.Set(false)
	}

	if d.ch.Valid.Get() && !ready {
		return
	}

	if !d.valid.Get() {
		return
	}

	p := d.next()
	d.ch.Valid.Set(true)
	d.ch.Payload.Set(p)
	d.sent++

	for _, f := range d.onNew {
		f(p)
	}
}

// Reader accepts payloads from a channel, raising ready at random.
type Reader[T any] struct {
	ch            *Channel[T]
	ready         randomizer.Bool
	onTransaction []func(T)
	received      uint64
}

// NewReader creates a reader. ready decides at every edge if the reader
// accepts a payload in the next cycle.
func NewReader[T any](ch *Channel[T], ready randomizer.Bool) *Reader[T] {
	return &Reader[T]{ch: ch, ready: ready}
}

// OnTransaction registers a function called with every accepted payload.
func (r *Reader[T]) OnTransaction(f func(T)) {
	r.onTransaction = append(r.onTransaction, f)
}

// Received returns the number of accepted payloads.
func (r *Reader[T]) Received() uint64 {
	return r.received
}

// Reset lowers ready.
func (r *Reader[T]) Reset() {
	r.ch.Ready.Set(false)
}

// RisingEdge takes the payload if it transfers and redraws ready.
func (r *Reader[T]) RisingEdge(_ timing.VTimeInCycle) {
	r.ch.Ready.Set(r.ready.Get())

	if !r.ch.Fire() {
		return
	}

	p := r.ch.Payload.Get()
	r.received++

	for _, f := range r.onTransaction {
		f(p)
	}
}
