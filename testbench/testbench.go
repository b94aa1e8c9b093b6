// Package testbench assembles a random AHB-Lite3 master, a memory slave and
// the checkers watching them into a runnable simulation.
package testbench

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/ahb/bfm"
	"github.com/sarchlab/ahblite/memory"
	"github.com/sarchlab/ahblite/monitoring"
	"github.com/sarchlab/ahblite/scoreboard"
	"github.com/sarchlab/ahblite/timing"
	"github.com/sarchlab/ahblite/tracing"
)

// ErrDrainTimeout is reported when transfers are still outstanding after the
// drain limit.
var ErrDrainTimeout = errors.New("master did not drain")

// Failures lists the problems found during a run.
type Failures []error

func (f Failures) Error() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "%d check failure(s)", len(f))

	for _, err := range f {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

// A Testbench is a master, an interconnect and a memory slave sharing one bus,
// with a predictor, a read checker and a protocol checker watching it.
type Testbench struct {
	name       string
	cycles     uint64
	drainLimit uint64

	engine       *timing.SerialEngine
	domain       *timing.ClockDomain
	bus          *bfm.Signals
	master       *bfm.Master
	interconnect *bfm.Interconnect
	slave        *bfm.SlaveMemory
	slaveStore   *memory.Storage
	modelStore   *memory.Storage
	predictor    *bfm.Predictor
	reads        *scoreboard.InOrder[bfm.ReadBeat]
	readChecker  *bfm.ReadChecker
	protocol     *bfm.ProtocolChecker

	recorder tracing.Recorder
	monitor  *monitoring.Monitor
	progress  *monitoring.ProgressBar
	transfers *monitoring.ProgressBar
	completed uint64
	timedOut  bool
}

// Name returns the name of the testbench.
func (tb *Testbench) Name() string {
	return tb.name
}

// Engine returns the engine the testbench runs on.
func (tb *Testbench) Engine() timing.Engine {
	return tb.engine
}

// Domain returns the clock domain of the bus.
func (tb *Testbench) Domain() *timing.ClockDomain {
	return tb.domain
}

// Master returns the bus master.
func (tb *Testbench) Master() *bfm.Master {
	return tb.master
}

// Slave returns the memory slave.
func (tb *Testbench) Slave() *bfm.SlaveMemory {
	return tb.slave
}

// ProtocolChecker returns the checker that verifies the bursts on the bus.
func (tb *Testbench) ProtocolChecker() *bfm.ProtocolChecker {
	return tb.protocol
}

// ReadChecker returns the checker that samples read data.
func (tb *Testbench) ReadChecker() *bfm.ReadChecker {
	return tb.readChecker
}

// Reads returns the scoreboard of read beats.
func (tb *Testbench) Reads() *scoreboard.InOrder[bfm.ReadBeat] {
	return tb.reads
}

// Monitor returns the monitor, or nil when monitoring is off.
func (tb *Testbench) Monitor() *monitoring.Monitor {
	return tb.monitor
}

// Progress returns the cycle and transfer progress bars of the last run. Both
// are nil when monitoring is off.
func (tb *Testbench) Progress() (cycles, transfers *monitoring.ProgressBar) {
	return tb.progress, tb.transfers
}

// LoadIHexFile preloads the slave memory and the predictor's model with an
// Intel HEX image. It must be called before Run.
func (tb *Testbench) LoadIHexFile(path string) error {
	err := memory.LoadIHexFile(path, tb.slaveStore)
	if err != nil {
		return err
	}

	return memory.LoadIHexFile(path, tb.modelStore)
}

// Run issues transactions for the configured number of cycles, lets the
// outstanding ones complete and returns the problems the checkers found as
// Failures.
func (tb *Testbench) Run() error {
	if tb.monitor != nil {
		tb.progress = tb.monitor.CreateProgressBar(tb.name, tb.cycles)
		tb.transfers = tb.monitor.CreateProgressBar(tb.name+".Transfers", 0)

		defer tb.monitor.CompleteProgressBar(tb.progress)
		defer tb.monitor.CompleteProgressBar(tb.transfers)
	}

	tb.domain.Start()

	err := tb.engine.Run()
	if err != nil {
		return errors.Wrap(err, "running the engine")
	}

	if tb.recorder != nil {
		err = tb.recorder.Flush()
		if err != nil {
			return errors.Wrap(err, "flushing the recorder")
		}
	}

	log.Printf("%s: %d cycles, %d units, %d reads, %d writes",
		tb.name, tb.domain.Cycles(), tb.protocol.Units(),
		tb.slave.Reads(), tb.slave.Writes())

	return tb.failures()
}

func (tb *Testbench) failures() error {
	var failures Failures

	failures = append(failures, tb.slave.Errors()...)
	failures = append(failures, tb.predictor.Errors()...)
	failures = append(failures, tb.protocol.Errors()...)

	if tb.timedOut {
		failures = append(failures, errors.Wrapf(ErrDrainTimeout,
			"after %d cycles", tb.domain.Cycles()))
	}

	err := tb.reads.Check()
	if err != nil {
		failures = append(failures, err)
	}

	if len(failures) == 0 {
		return nil
	}

	return failures
}

// Terminate flushes and closes the recorder and stops the monitor.
func (tb *Testbench) Terminate() error {
	if tb.recorder != nil {
		err := tb.recorder.Close()
		if err != nil {
			return errors.Wrap(err, "closing the recorder")
		}
	}

	if tb.monitor != nil {
		return tb.monitor.StopServer()
	}

	return nil
}

func (tb *Testbench) endOfCycle(ctx timing.HookCtx) {
	if ctx.Pos != timing.HookPosCycleEnd {
		return
	}

	cycles := tb.domain.Cycles()

	if tb.progress != nil && cycles <= tb.cycles {
		tb.progress.IncrementFinished(1)
	}

	if tb.transfers != nil {
		done := tb.slave.Reads() + tb.slave.Writes()
		tb.transfers.MoveInProgressToFinished(done - tb.completed)
		tb.completed = done
	}

	if cycles >= tb.cycles {
		tb.master.Drain()
	}

	if tb.master.Quiet() {
		tb.domain.Stop()
		return
	}

	if cycles >= tb.cycles+tb.drainLimit {
		tb.timedOut = true
		tb.domain.Stop()
	}
}

func (tb *Testbench) countIssue(ctx timing.HookCtx) {
	if ctx.Pos != bfm.HookPosIssue || tb.transfers == nil {
		return
	}

	t := ctx.Item.(ahb.Transaction)
	if t.TransferType.CarriesData() {
		tb.transfers.IncrementTotal(1)
		tb.transfers.IncrementInProgress(1)
	}
}
