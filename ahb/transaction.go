// Package ahb generates AHB-Lite3 bus activity.
//
// The central piece is the Generator, which produces units of bus activity:
// either a single idle cycle or a complete, legal burst. The bus functional
// models in package bfm turn these units into wire activity.
package ahb

import (
	"encoding/hex"
	"fmt"
)

// TransferType is the HTRANS encoding.
type TransferType uint8

// The AHB-Lite3 transfer types.
const (
	Idle   TransferType = 0
	Busy   TransferType = 1
	NonSeq TransferType = 2
	Seq    TransferType = 3
)

func (t TransferType) String() string {
	switch t {
	case Idle:
		return "IDLE"
	case Busy:
		return "BUSY"
	case NonSeq:
		return "NONSEQ"
	case Seq:
		return "SEQ"
	default:
		return fmt.Sprintf("HTRANS(%d)", uint8(t))
	}
}

// CarriesData tells if a transfer of this type has a data phase.
func (t TransferType) CarriesData() bool {
	return t == NonSeq || t == Seq
}

// A Transaction is the address phase of one bus cycle, plus the write data of
// its data phase.
type Transaction struct {
	Address      uint64
	Write        bool
	SizeLog2     uint8
	BurstCode    uint8
	Protection   uint8
	TransferType TransferType

	// WriteData holds the full bus width, little-endian. Receivers ignore it
	// for reads and on BUSY and IDLE cycles.
	WriteData []byte
}

// IsNull tells if the transaction is the all-zero idle cycle.
func (t Transaction) IsNull() bool {
	if t.Address != 0 || t.Write || t.SizeLog2 != 0 || t.BurstCode != 0 ||
		t.Protection != 0 || t.TransferType != Idle {
		return false
	}

	for _, b := range t.WriteData {
		if b != 0 {
			return false
		}
	}

	return true
}

// Bytes returns the number of bytes moved by the transfer.
func (t Transaction) Bytes() uint64 {
	return 1 << t.SizeLog2
}

func (t Transaction) String() string {
	dir := "R"
	if t.Write {
		dir = "W"
	}

	return fmt.Sprintf("%s %s 0x%x size=%d burst=%s prot=%d data=%s",
		t.TransferType, dir, t.Address, t.Bytes(),
		DecodeBurst(t.BurstCode), t.Protection, hex.EncodeToString(t.WriteData))
}
