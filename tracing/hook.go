package tracing

import (
	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/ahb/bfm"
	"github.com/sarchlab/ahblite/idgen"
	"github.com/sarchlab/ahblite/timing"
)

// IssueTracer is a hook that records the transactions a bfm.Master issues.
// A NONSEQ or an IDLE cycle opens a new unit.
type IssueTracer struct {
	recorder Recorder
	ids      idgen.Generator

	unit string
	beat int
}

// NewIssueTracer creates a tracer recording into recorder.
func NewIssueTracer(recorder Recorder, ids idgen.Generator) *IssueTracer {
	return &IssueTracer{recorder: recorder, ids: ids}
}

// Func records the issued transaction.
func (h *IssueTracer) Func(ctx timing.HookCtx) {
	if ctx.Pos != bfm.HookPosIssue {
		return
	}

	t := ctx.Item.(ahb.Transaction)

	if h.unit == "" || t.TransferType == ahb.NonSeq || t.TransferType == ahb.Idle {
		h.unit = h.ids.Generate()
		h.beat = 0
	} else {
		h.beat++
	}

	h.recorder.Record(h.unit, h.beat, t)
}
