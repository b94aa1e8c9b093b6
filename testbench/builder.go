package testbench

import (
	"log"
	"math"
	"math/rand"

	"github.com/sarchlab/ahblite/ahb"
	"github.com/sarchlab/ahblite/ahb/bfm"
	"github.com/sarchlab/ahblite/config"
	"github.com/sarchlab/ahblite/idgen"
	"github.com/sarchlab/ahblite/memory"
	"github.com/sarchlab/ahblite/monitoring"
	"github.com/sarchlab/ahblite/randomizer"
	"github.com/sarchlab/ahblite/timing"
	"github.com/sarchlab/ahblite/tracing"
)

// Builder can be used to build a testbench.
type Builder struct {
	generator   ahb.GeneratorBuilder
	cfg         config.Config
	resetCycles uint64
	drainLimit  uint64
	recorder    tracing.Recorder
	monitorOn   bool
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:         config.Default(),
		resetCycles: 2,
		drainLimit:  1 << 16,
	}
}

// WithConfig takes the bus, generator, cycle and monitor parameters from c.
func (b Builder) WithConfig(c config.Config) Builder {
	b.cfg = c
	b.monitorOn = c.Monitor

	return b
}

// WithDataWidth sets the width of the data bus in bits.
func (b Builder) WithDataWidth(bits int) Builder {
	b.cfg.DataWidth = bits
	return b
}

// WithAddressWidth sets the number of address bits.
func (b Builder) WithAddressWidth(bits int) Builder {
	b.cfg.AddressWidth = bits
	return b
}

// WithSeed sets the seed of the generator and of the wait-state randomizers.
func (b Builder) WithSeed(seed int64) Builder {
	b.cfg.Seed = seed
	return b
}

// WithCycles sets the number of cycles transactions are issued for.
func (b Builder) WithCycles(n uint64) Builder {
	b.cfg.Cycles = n
	return b
}

// WithResetCycles sets the number of cycles reset is held for.
func (b Builder) WithResetCycles(n uint64) Builder {
	b.resetCycles = n
	return b
}

// WithDrainLimit sets how many cycles the master may take to drain once the
// issuing cycles are over.
func (b Builder) WithDrainLimit(n uint64) Builder {
	b.drainLimit = n
	return b
}

// WithRecorder records every address phase the master issues.
func (b Builder) WithRecorder(r tracing.Recorder) Builder {
	b.recorder = r
	return b
}

// WithMonitor serves the testbench state on the given port. Port 0 picks a
// random port.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.cfg.MonitorPort = port

	return b
}

// WithoutMonitoring turns the monitor off.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

func (b Builder) parametersMustBeValid() {
	err := b.cfg.Validate()
	if err != nil {
		panic(err)
	}
}

// Build builds the testbench.
func (b Builder) Build(name string) *Testbench {
	b.parametersMustBeValid()

	tb := &Testbench{
		name:       name,
		cycles:     b.cfg.Cycles,
		drainLimit: b.drainLimit,
	}

	tb.engine = timing.NewSerialEngine()
	tb.domain = timing.NewClockDomain(name+".Clk", tb.engine).
		WithResetCycles(b.resetCycles)
	tb.bus = bfm.NewSignals(b.cfg.DataWidth)

	gen := b.cfg.GeneratorBuilder().Build()
	stalls := rand.New(rand.NewSource(b.cfg.Seed + 1))
	capacity := storageCapacity(b.cfg.AddressWidth)

	tb.master = bfm.NewMaster(name+".Master", tb.bus, gen)
	tb.interconnect = bfm.NewInterconnect(tb.bus,
		randomizer.NewBoolRandomizer(stalls))
	tb.slaveStore = memory.NewStorage(capacity)
	tb.modelStore = memory.NewStorage(capacity)
	tb.slave = bfm.NewSlaveMemory(name+".Mem", tb.bus, tb.slaveStore, 0,
		randomizer.NewBoolRandomizer(stalls))
	tb.reads = bfm.NewReadScoreboard(name + ".Reads")
	tb.predictor = bfm.NewPredictor(b.cfg.DataWidth, tb.modelStore, 0,
		tb.reads)
	tb.readChecker = bfm.NewReadChecker(tb.bus, tb.reads)
	tb.protocol = bfm.NewProtocolChecker(name+".Protocol", tb.bus)

	tb.master.AcceptHook(tb.predictor)
	tb.master.AcceptHook(timing.HookFunc(tb.countIssue))

	if b.recorder != nil {
		tb.recorder = b.recorder
		tb.master.AcceptHook(
			tracing.NewIssueTracer(b.recorder, idgen.NewSequential()))
	}

	tb.domain.Register(tb.master)
	tb.domain.Register(tb.interconnect)
	tb.domain.Register(tb.slave)
	tb.domain.Register(tb.readChecker)
	tb.domain.Register(tb.protocol)
	tb.domain.Register(tb.bus)
	tb.domain.AcceptHook(timing.HookFunc(tb.endOfCycle))

	if b.monitorOn {
		b.buildMonitor(tb)
	}

	return tb
}

func (b Builder) buildMonitor(tb *Testbench) {
	tb.monitor = monitoring.NewMonitor().
		WithPortNumber(b.cfg.MonitorPort).
		WithBrowser(b.cfg.OpenBrowser)
	tb.monitor.RegisterEngine(tb.engine)
	tb.monitor.RegisterComponent(tb.domain)
	tb.monitor.RegisterComponent(tb.master)
	tb.monitor.RegisterComponent(tb.slave)
	tb.monitor.RegisterComponent(tb.protocol)
	tb.monitor.RegisterComponent(tb.reads)

	err := tb.monitor.StartServer()
	if err != nil {
		log.Panic(err)
	}
}

// storageCapacity covers the whole address space the generator can reach.
func storageCapacity(addressWidth int) uint64 {
	if addressWidth >= 64 {
		return math.MaxUint64
	}

	return uint64(1) << addressWidth
}
