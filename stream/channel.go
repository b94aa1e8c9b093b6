// Package stream models valid/ready handshake channels and valid-only flows,
// with randomized drivers and readers to exercise them.
package stream

import "github.com/sarchlab/ahblite/signal"

// A Channel is a stream interface: a payload qualified by valid and accepted
// by ready. A flow is a channel whose ready is never driven.
type Channel[T any] struct {
	Valid   *signal.Reg[bool]
	Ready   *signal.Reg[bool]
	Payload *signal.Reg[T]
}

// NewChannel creates an idle channel.
func NewChannel[T any]() *Channel[T] {
	var zero T

	return &Channel[T]{
		Valid:   signal.NewReg(false),
		Ready:   signal.NewReg(false),
		Payload: signal.NewReg(zero),
	}
}

// Commit makes the next values current.
func (c *Channel[T]) Commit() {
	c.Valid.Commit()
	c.Ready.Commit()
	c.Payload.Commit()
}

// Fire tells if a payload transfers at the coming edge.
func (c *Channel[T]) Fire() bool {
	return c.Valid.Get() && c.Ready.Get()
}
