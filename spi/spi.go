// Package spi models the master side of an SPI link, driving a slave model
// through the four clock polarity and phase modes.
package spi

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrBadConfig reports a master initialized with unusable parameters.
	ErrBadConfig = errors.New("bad SPI configuration")

	// ErrUndriven reports MISO bits the slave did not drive.
	ErrUndriven = errors.New("MISO not driven")

	// ErrMismatch reports an exchange that returned unexpected data.
	ErrMismatch = errors.New("SPI data mismatch")
)

// Mode is the clock polarity and phase of a link.
type Mode struct {
	// CPOL is the idle level of SCLK.
	CPOL bool

	// CPHA selects sampling on the trailing edge instead of the leading one.
	CPHA bool
}

// Wires are the lines the master drives.
type Wires struct {
	SCLK bool
	MOSI bool
	SS   bool
}

// A Slave reacts to the master. Update is called every time the master
// changes a wire and returns the MISO line and whether the slave drives it.
type Slave interface {
	Update(w Wires, now time.Duration) (miso bool, driven bool)
}

// Master is the master end of an SPI link.
type Master struct {
	slave      Slave
	mode       Mode
	dataWidth  int
	baudPeriod time.Duration

	wires  Wires
	miso   bool
	driven bool
	now    time.Duration
}

// NewMaster creates a master attached to slave, in mode 0 with 8-bit words.
// Init must be called before exchanging data.
func NewMaster(slave Slave) *Master {
	return &Master{
		slave:      slave,
		dataWidth:  8,
		baudPeriod: time.Microsecond,
	}
}

// Init deselects the slave and sets the mode, the bit period and the word
// width, from 1 to 64 bits.
func (m *Master) Init(mode Mode, baudPeriod time.Duration, dataWidth int) error {
	if dataWidth < 1 || dataWidth > 64 {
		return errors.Wrapf(ErrBadConfig, "data width %d", dataWidth)
	}

	if baudPeriod < 2 {
		return errors.Wrapf(ErrBadConfig, "baud period %v", baudPeriod)
	}

	m.mode = mode
	m.baudPeriod = baudPeriod
	m.dataWidth = dataWidth

	m.wires.SS = true
	m.wires.SCLK = mode.CPOL
	m.update()

	return nil
}

// Now returns the time elapsed on the link.
func (m *Master) Now() time.Duration {
	return m.now
}

// Wires returns the current master outputs.
func (m *Master) Wires() Wires {
	return m.wires
}

// Enable selects the slave and waits one bit period.
func (m *Master) Enable() {
	m.wires.SS = false
	m.update()
	m.wait(m.baudPeriod)
}

// Disable waits one bit period, deselects the slave and waits again.
func (m *Master) Disable() {
	m.wait(m.baudPeriod)
	m.wires.SS = true
	m.update()
	m.wait(m.baudPeriod)
}

// Exchange shifts data out on MOSI, most significant bit first, and returns
// the bits sampled on MISO in the same order. Bits the slave does not drive
// read as 'x'.
func (m *Master) Exchange(data uint64) string {
	half := m.baudPeriod / 2
	buffer := strings.Builder{}

	for i := 0; i < m.dataWidth; i++ {
		m.wires.MOSI = data>>(m.dataWidth-1-i)&1 == 1

		if m.mode.CPHA {
			m.wires.SCLK = !m.mode.CPOL
			m.update()
			m.wait(half)
			m.sample(&buffer)
			m.wires.SCLK = m.mode.CPOL
			m.update()
			m.wait(half)
		} else {
			m.update()
			m.wait(half)
			m.sample(&buffer)
			m.wires.SCLK = !m.mode.CPOL
			m.update()
			m.wait(half)
			m.wires.SCLK = m.mode.CPOL
			m.update()
		}
	}

	return buffer.String()
}

// ExchangeCheck exchanges masterData and verifies the slave answered
// slaveData.
func (m *Master) ExchangeCheck(masterData, slaveData uint64) error {
	bits := m.Exchange(masterData)

	if strings.ContainsRune(bits, 'x') {
		return errors.Wrapf(ErrUndriven, "received %s", bits)
	}

	got, err := strconv.ParseUint(bits, 2, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing %s", bits)
	}

	if got != slaveData {
		return errors.Wrapf(ErrMismatch, "received 0x%x, expected 0x%x",
			got, slaveData)
	}

	return nil
}

func (m *Master) sample(buffer *strings.Builder) {
	switch {
	case !m.driven:
		buffer.WriteByte('x')
	case m.miso:
		buffer.WriteByte('1')
	default:
		buffer.WriteByte('0')
	}
}

func (m *Master) update() {
	m.miso, m.driven = m.slave.Update(m.wires, m.now)
}

func (m *Master) wait(d time.Duration) {
	m.now += d
	m.update()
}
