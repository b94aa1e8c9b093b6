package bfm

import (
	"bytes"
	"fmt"
	"log"

	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/memory"
	"github.com/sarchlab/ahblite/scoreboard"
	"github.com/sarchlab/ahblite/timing"
)

// A ReadBeat is the data returned by one read transfer, restricted to its
// active byte lanes.
type ReadBeat struct {
	Address  uint64
	SizeLog2 uint8
	Data     []byte
}

func (b ReadBeat) String() string {
	return fmt.Sprintf("0x%x/%d: %x", b.Address, 1<<b.SizeLog2, b.Data)
}

// SameReadBeat is the scoreboard match function for read beats.
func SameReadBeat(uut, ref ReadBeat) bool {
	return uut.Address == ref.Address &&
		uut.SizeLog2 == ref.SizeLog2 &&
		bytes.Equal(uut.Data, ref.Data)
}

// NewReadScoreboard creates the in-order scoreboard shared by a Predictor and
// a ReadChecker.
func NewReadScoreboard(name string) *scoreboard.InOrder[ReadBeat] {
	return scoreboard.NewInOrder(name, SameReadBeat)
}

// Predictor is a transaction-level model of the memory slave. It hooks on a
// Master, applies every issued write to its own store and predicts the data of
// every issued read.
type Predictor struct {
	busBytes uint64
	store    memory.Store
	base     uint64
	reads    *scoreboard.InOrder[ReadBeat]
	errs     []error
}

// NewPredictor creates a predictor for a bus of dataWidth bits. The store
// must start with the same content as the one of the slave.
func NewPredictor(
	dataWidth int,
	store memory.Store,
	base uint64,
	reads *scoreboard.InOrder[ReadBeat],
) *Predictor {
	return &Predictor{
		busBytes: uint64(dataWidth / 8),
		store:    store,
		base:     base,
		reads:    reads,
	}
}

// Func observes the transactions issued by a master.
func (p *Predictor) Func(ctx timing.HookCtx) {
	if ctx.Pos != HookPosIssue {
		return
	}

	p.Observe(ctx.Item.(ahb.Transaction))
}

// Observe updates the model with one transaction.
func (p *Predictor) Observe(t ahb.Transaction) {
	if !t.TransferType.CarriesData() {
		return
	}

	size := t.Bytes()
	lane := t.Address % p.busBytes
	inRange := t.Address >= p.base && p.store.CanAccess(t.Address-p.base, size)

	if t.Write {
		if inRange && len(t.WriteData) > 0 {
			err := p.store.Write(t.Address-p.base, t.WriteData[lane:lane+size])
			p.fail(err, t)
		}

		return
	}

	data := make([]byte, size)
	if inRange {
		stored, err := p.store.Read(t.Address-p.base, size)
		if err == nil {
			data = stored
		}

		p.fail(err, t)
	}

	p.reads.RefPush(ReadBeat{
		Address:  t.Address,
		SizeLog2: t.SizeLog2,
		Data:     data,
	})
}

// Errors returns the store accesses that failed inside the mapped range.
func (p *Predictor) Errors() []error {
	return p.errs
}

func (p *Predictor) fail(err error, t ahb.Transaction) {
	if err == nil {
		return
	}

	err = errors.Wrapf(err, "predicting %s", t)
	log.Printf("%v", err)
	p.errs = append(p.errs, err)
}
