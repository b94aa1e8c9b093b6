package timing

import (
	"fmt"
	"log"
)

// Clocked is a sequential component. At every rising edge it samples the
// current value of its inputs and sets the next value of its outputs.
type Clocked interface {
	RisingEdge(cycle VTimeInCycle)
}

// Committer is a set of registers whose next values become current after all
// the sequential components have seen the edge.
type Committer interface {
	Commit()
}

// Settler is a combinational component. It is evaluated after the registers
// are committed and may overwrite current values directly.
type Settler interface {
	Settle()
}

// Resetter is a component that is held in reset during the first cycles of the
// clock domain.
type Resetter interface {
	Reset()
}

// HookPosResetReleased triggers once, on the first cycle out of reset.
var HookPosResetReleased = &HookPos{Name: "ResetReleased"}

// HookPosCycleEnd triggers after every cycle has settled.
var HookPosCycleEnd = &HookPos{Name: "CycleEnd"}

type risingEdgeEvent struct {
	domain *ClockDomain
}

// ClockDomain drives a set of components from one clock and one synchronous
// reset.
type ClockDomain struct {
	*HookableBase

	name        string
	engine      EventScheduler
	resetCycles uint64
	maxCycles   uint64

	sequential    []Clocked
	registers     []Committer
	combinational []Settler
	resetters     []Resetter

	cycles        uint64
	started       bool
	stopRequested bool
}

// NewClockDomain creates a clock domain that schedules its edges on the given
// engine. The domain holds reset for one cycle and never stops by itself
// unless a cycle limit is set.
func NewClockDomain(name string, engine EventScheduler) *ClockDomain {
	return &ClockDomain{
		HookableBase: NewHookableBase(),
		name:         name,
		engine:       engine,
		resetCycles:  1,
	}
}

// Name returns the name of the clock domain.
func (d *ClockDomain) Name() string {
	return d.name
}

// WithResetCycles sets the number of cycles reset is asserted for.
func (d *ClockDomain) WithResetCycles(n uint64) *ClockDomain {
	d.resetCycles = n
	return d
}

// WithMaxCycles stops the clock after n cycles, reset included. Zero means no
// limit.
func (d *ClockDomain) WithMaxCycles(n uint64) *ClockDomain {
	d.maxCycles = n
	return d
}

// Register adds a component to the domain. A component may play several roles
// at once, for example being both Clocked and a Settler.
func (d *ClockDomain) Register(c any) {
	if d.started {
		panic("timing: cannot register components after the clock started")
	}

	registered := false

	if r, ok := c.(Resetter); ok {
		d.resetters = append(d.resetters, r)
		registered = true
	}

	if s, ok := c.(Clocked); ok {
		d.sequential = append(d.sequential, s)
		registered = true
	}

	if r, ok := c.(Committer); ok {
		d.registers = append(d.registers, r)
		registered = true
	}

	if s, ok := c.(Settler); ok {
		d.combinational = append(d.combinational, s)
		registered = true
	}

	if !registered {
		panic(fmt.Sprintf("timing: %T is not a clocked, register, "+
			"combinational or resettable component", c))
	}
}

// Start schedules the first rising edge at the current engine time.
func (d *ClockDomain) Start() {
	if d.started {
		return
	}

	d.started = true
	d.scheduleEdge(d.engine.CurrentTime())
}

// Stop prevents any edge after the current one.
func (d *ClockDomain) Stop() {
	d.stopRequested = true
}

// Cycles returns the number of edges processed so far.
func (d *ClockDomain) Cycles() uint64 {
	return d.cycles
}

// InReset tells if the next edge will be a reset edge.
func (d *ClockDomain) InReset() bool {
	return d.cycles < d.resetCycles
}

// Handle processes the rising edge events of the domain.
func (d *ClockDomain) Handle(event any) error {
	switch e := event.(type) {
	case *risingEdgeEvent:
		if e.domain != d {
			return fmt.Errorf("edge of domain %s delivered to %s",
				e.domain.name, d.name)
		}

		d.edge(d.engine.CurrentTime())
	default:
		return fmt.Errorf("unknown event type: %T", event)
	}

	return nil
}

func (d *ClockDomain) edge(now VTimeInCycle) {
	if d.InReset() {
		for _, r := range d.resetters {
			r.Reset()
		}
	} else {
		if d.cycles == d.resetCycles {
			log.Printf("%s: reset released at cycle %d", d.name, now)
			d.InvokeHook(HookCtx{Domain: d, Pos: HookPosResetReleased, Item: now})
		}

		for _, s := range d.sequential {
			s.RisingEdge(now)
		}
	}

	for _, r := range d.registers {
		r.Commit()
	}

	for _, s := range d.combinational {
		s.Settle()
	}

	d.cycles++
	d.InvokeHook(HookCtx{Domain: d, Pos: HookPosCycleEnd, Item: now})

	if d.stopRequested {
		return
	}

	if d.maxCycles > 0 && d.cycles >= d.maxCycles {
		return
	}

	d.scheduleEdge(now + 1)
}

func (d *ClockDomain) scheduleEdge(t VTimeInCycle) {
	d.engine.Schedule(ScheduledEvent{
		Event:   &risingEdgeEvent{domain: d},
		Time:    t,
		Handler: d,
	})
}
