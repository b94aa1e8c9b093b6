// Package config collects the run parameters of the ahblite tools from dotenv
// files and AHBLITE_* environment variables.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/ahb"
)

// ErrInvalid is the cause of every error returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the parameters shared by the generate and simulate commands.
type Config struct {
	Seed            int64
	AddressWidth    int
	DataWidth       int
	IdleProbability float64
	BusyProbability float64
	MaxBusyBeats    int

	// Generation.
	Count   int
	Workers int
	Format  string
	Output  string

	// Simulation.
	Cycles      uint64
	Monitor     bool
	MonitorPort int
	OpenBrowser bool
	Record      string
	Preload     string
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Seed:            1,
		AddressWidth:    32,
		DataWidth:       32,
		IdleProbability: 0.8,
		BusyProbability: 0.2,
		MaxBusyBeats:    3,
		Count:           100,
		Workers:         1,
		Format:          "text",
		Cycles:          10000,
	}
}

// Load starts from Default, applies the variables found in the dotenv files
// and then the ones set in the environment. Files that do not exist are
// skipped. The process environment takes precedence over the files, and an
// earlier file over a later one.
func Load(files ...string) (Config, error) {
	fromFiles := map[string]string{}

	for _, f := range files {
		values, err := godotenv.Read(f)
		if os.IsNotExist(errors.Cause(err)) {
			continue
		}

		if err != nil {
			return Config{}, errors.Wrapf(err, "reading %s", f)
		}

		for k, v := range values {
			if _, found := fromFiles[k]; !found {
				fromFiles[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fromFiles[key]

		return v, ok
	}

	c := Default()
	p := parser{lookup: lookup}

	p.int64("AHBLITE_SEED", &c.Seed)
	p.int("AHBLITE_ADDRESS_WIDTH", &c.AddressWidth)
	p.int("AHBLITE_DATA_WIDTH", &c.DataWidth)
	p.float("AHBLITE_IDLE_PROBABILITY", &c.IdleProbability)
	p.float("AHBLITE_BUSY_PROBABILITY", &c.BusyProbability)
	p.int("AHBLITE_MAX_BUSY_BEATS", &c.MaxBusyBeats)
	p.int("AHBLITE_COUNT", &c.Count)
	p.int("AHBLITE_WORKERS", &c.Workers)
	p.string("AHBLITE_FORMAT", &c.Format)
	p.string("AHBLITE_OUTPUT", &c.Output)
	p.uint64("AHBLITE_CYCLES", &c.Cycles)
	p.bool("AHBLITE_MONITOR", &c.Monitor)
	p.int("AHBLITE_MONITOR_PORT", &c.MonitorPort)
	p.bool("AHBLITE_OPEN_BROWSER", &c.OpenBrowser)
	p.string("AHBLITE_RECORD", &c.Record)
	p.string("AHBLITE_PRELOAD", &c.Preload)

	if p.err != nil {
		return Config{}, p.err
	}

	return c, nil
}

// Validate reports the first parameter that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.AddressWidth < 1 || c.AddressWidth > 64:
		return errors.Wrapf(ErrInvalid,
			"address width %d is not in [1, 64]", c.AddressWidth)
	case c.DataWidth < 8 || c.DataWidth > ahb.MaxDataWidth ||
		c.DataWidth&(c.DataWidth-1) != 0:
		return errors.Wrapf(ErrInvalid,
			"data width %d is not a power of two in [8, %d]",
			c.DataWidth, ahb.MaxDataWidth)
	case c.IdleProbability < 0 || c.IdleProbability > 1:
		return errors.Wrapf(ErrInvalid,
			"idle probability %g is not in [0, 1]", c.IdleProbability)
	case c.BusyProbability < 0 || c.BusyProbability > 1:
		return errors.Wrapf(ErrInvalid,
			"busy probability %g is not in [0, 1]", c.BusyProbability)
	case c.MaxBusyBeats < 0:
		return errors.Wrapf(ErrInvalid,
			"max busy beats %d is negative", c.MaxBusyBeats)
	case c.Count < 0:
		return errors.Wrapf(ErrInvalid, "count %d is negative", c.Count)
	case c.Cycles == 0:
		return errors.Wrap(ErrInvalid, "cycles must be positive")
	case c.Workers < 1:
		return errors.Wrapf(ErrInvalid, "workers %d is less than 1", c.Workers)
	case c.MonitorPort < 0 || c.MonitorPort > 65535:
		return errors.Wrapf(ErrInvalid,
			"monitor port %d is out of range", c.MonitorPort)
	}

	switch c.Format {
	case "text", "csv", "sqlite":
	default:
		return errors.Wrapf(ErrInvalid, "unknown format %q", c.Format)
	}

	return nil
}

// GeneratorBuilder returns a generator builder carrying the generator
// parameters of c.
func (c Config) GeneratorBuilder() ahb.GeneratorBuilder {
	return ahb.MakeGeneratorBuilder().
		WithAddressWidth(c.AddressWidth).
		WithDataWidth(c.DataWidth).
		WithIdleProbability(c.IdleProbability).
		WithBusyProbability(c.BusyProbability).
		WithMaxBusyBeats(c.MaxBusyBeats).
		WithSeed(c.Seed)
}

type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) value(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (p *parser) fail(key, v string, err error) {
	p.err = errors.Wrapf(err, "parsing %s=%q", key, v)
}

func (p *parser) string(key string, dst *string) {
	if v, ok := p.value(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = n
}

func (p *parser) int64(key string, dst *int64) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = n
}

func (p *parser) uint64(key string, dst *uint64) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = n
}

func (p *parser) float(key string, dst *float64) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = f
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.value(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = b
}
