package spi

import "time"

// ShiftSlave is a reference slave. While selected it shifts a loaded word out
// on MISO and shifts MOSI into a receive register, in the mode it was built
// for.
type ShiftSlave struct {
	mode  Mode
	width int

	tx       uint64
	rx       uint64
	sent     int
	received int

	selected bool
	prevSCLK bool
	miso     bool
	driven   bool
}

// NewShiftSlave creates a slave for words of width bits.
func NewShiftSlave(mode Mode, width int) *ShiftSlave {
	return &ShiftSlave{mode: mode, width: width, prevSCLK: mode.CPOL}
}

// Load sets the word shifted out during the next selection.
func (s *ShiftSlave) Load(data uint64) {
	s.tx = data
}

// Received returns the last bits shifted in from MOSI.
func (s *ShiftSlave) Received() uint64 {
	if s.width == 64 {
		return s.rx
	}

	return s.rx & (1<<s.width - 1)
}

// ReceivedBits returns the number of bits shifted in during the current or
// last selection.
func (s *ShiftSlave) ReceivedBits() int {
	return s.received
}

// Update follows the master wires.
func (s *ShiftSlave) Update(w Wires, _ time.Duration) (bool, bool) {
	switch {
	case w.SS:
		s.selected = false
		s.driven = false
	case !s.selected:
		s.selected = true
		s.sent = 0
		s.received = 0
		s.rx = 0

		if !s.mode.CPHA {
			s.shiftOut()
		}
	case w.SCLK != s.prevSCLK:
		leading := w.SCLK != s.mode.CPOL
		if leading != s.mode.CPHA {
			s.shiftIn(w.MOSI)
		} else {
			s.shiftOut()
		}
	}

	s.prevSCLK = w.SCLK

	return s.miso, s.driven
}

func (s *ShiftSlave) shiftIn(bit bool) {
	s.rx <<= 1
	if bit {
		s.rx |= 1
	}

	s.received++
}

func (s *ShiftSlave) shiftOut() {
	index := s.width - 1 - s.sent%s.width
	s.miso = s.tx>>index&1 == 1
	s.driven = true
	s.sent++
}
