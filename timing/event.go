// Package timing provides the cycle-based event engine and the clock domain
// that advance the bus functional models.
package timing

// VTimeInCycle is the simulated time, counted in clock cycles.
type VTimeInCycle uint64

// Handler processes events. Events are plain data; handlers switch on the
// concrete type:
//
//	func (h *MyHandler) Handle(event any) error {
//	    switch e := event.(type) {
//	    case *MyEvent:
//	        // handle MyEvent
//	    default:
//	        return fmt.Errorf("unknown event type: %T", e)
//	    }
//	    return nil
//	}
type Handler interface {
	Handle(event any) error
}

// TimeTeller exposes the current simulation cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// EventScheduler schedules events in the simulation timeline.
type EventScheduler interface {
	TimeTeller
	Schedule(event ScheduledEvent)
}

// Engine keeps the simulation running.
type Engine interface {
	Hookable
	EventScheduler

	// Run processes all the events until none is left.
	Run() error

	// Pause blocks the engine before the next event until Continue is called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}

// ScheduledEvent wraps a user event with the metadata the engine needs.
type ScheduledEvent struct {
	// Event is the payload delivered to the handler, usually a pointer.
	Event any

	// Time is the cycle when the event should be processed.
	Time VTimeInCycle

	// Handler is the component that will process this event.
	Handler Handler

	// IsSecondary events run after all primary events of the same cycle.
	IsSecondary bool
}
