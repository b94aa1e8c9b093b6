// Package tracing records the bus transactions produced by a generator or
// issued by a master, into SQLite, CSV or plain text.
package tracing

import (
	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/idgen"
)

// A Recorder stores transactions. Each transaction belongs to a unit, a burst
// or an idle cycle, and has a beat index inside the unit.
type Recorder interface {
	Record(unit string, beat int, t ahb.Transaction)
	Flush() error
	Close() error
}

// RecordUnit records all the beats of one unit under a fresh ID and returns
// the ID.
func RecordUnit(r Recorder, ids idgen.Generator, unit []ahb.Transaction) string {
	id := ids.Generate()
	for i, t := range unit {
		r.Record(id, i, t)
	}

	return id
}

// NopRecorder drops everything.
type NopRecorder struct{}

// Record does nothing.
func (NopRecorder) Record(string, int, ahb.Transaction) {}

// Flush does nothing.
func (NopRecorder) Flush() error { return nil }

// Close does nothing.
func (NopRecorder) Close() error { return nil }
