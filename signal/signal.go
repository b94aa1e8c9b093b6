// Package signal models registered wires shared by bus functional models.
package signal

// Reg is a registered value. Sequential logic reads the current value and sets
// the next one; the next value becomes current on Commit. Combinational logic
// uses Force to change the current value immediately.
//
// Slices stored in a Reg are shared, not copied. Drivers must set a fresh
// slice rather than mutate one they have already set.
type Reg[T any] struct {
	cur  T
	next T
}

// NewReg creates a register holding the given value.
func NewReg[T any](v T) *Reg[T] {
	return &Reg[T]{cur: v, next: v}
}

// Get returns the current value.
func (r *Reg[T]) Get() T {
	return r.cur
}

// Set schedules a value for the next cycle.
func (r *Reg[T]) Set(v T) {
	r.next = v
}

// Next returns the value scheduled for the next cycle.
func (r *Reg[T]) Next() T {
	return r.next
}

// Force changes both the current and the next value.
func (r *Reg[T]) Force(v T) {
	r.cur = v
	r.next = v
}

// Commit makes the next value current. An undriven register keeps its value.
func (r *Reg[T]) Commit() {
	r.cur = r.next
}

// Committer is anything that can be committed at the end of an edge.
type Committer interface {
	Commit()
}

// Bundle commits a group of registers together.
type Bundle []Committer

// Commit commits every register of the bundle.
func (b Bundle) Commit() {
	for _, r := range b {
		r.Commit()
	}
}
