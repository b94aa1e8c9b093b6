package ahb

import (
	"github.com/pkg/errors"
)

// The ways a unit of bus activity can be illegal.
var (
	ErrIllegalTransferType = errors.New("illegal transfer type")
	ErrAttributeChanged    = errors.New("burst attribute changed")
	ErrCrossesBoundary     = errors.New("burst crosses a 1 KiB boundary")
	ErrBadAddressSequence  = errors.New("bad address sequence")
	ErrBeatCount           = errors.New("wrong number of beats")
	ErrUnaligned           = errors.New("unaligned address")
	ErrSizeTooLarge        = errors.New("transfer size exceeds the bus width")
)

// CheckBurst verifies that one unit returned by a generator is legal on a bus
// of dataWidth bits. A unit is either a single null transaction, or a burst
// made of a NONSEQ beat, SEQ beats, and BUSY cycles between them.
func CheckBurst(beats []Transaction, dataWidth int) error {
	if len(beats) == 0 {
		return errors.Wrap(ErrBeatCount, "empty unit")
	}

	if len(beats) == 1 && beats[0].IsNull() {
		return nil
	}

	first := beats[0]
	if first.TransferType != NonSeq {
		return errors.Wrapf(ErrIllegalTransferType,
			"burst starts with %s", first.TransferType)
	}

	if first.SizeLog2 > MaxSizeLog2(dataWidth) {
		return errors.Wrapf(ErrSizeTooLarge,
			"HSIZE %d on a %d-bit bus", first.SizeLog2, dataWidth)
	}

	err := checkAttributes(beats)
	if err != nil {
		return err
	}

	data, err := dataBeats(beats)
	if err != nil {
		return err
	}

	return checkAddresses(DecodeBurst(first.BurstCode), data)
}

func checkAttributes(beats []Transaction) error {
	first := beats[0]

	for i, t := range beats {
		if t.Write != first.Write || t.SizeLog2 != first.SizeLog2 ||
			t.BurstCode != first.BurstCode || t.Protection != first.Protection {
			return errors.Wrapf(ErrAttributeChanged, "beat %d: %s", i, t)
		}

		if t.Address%t.Bytes() != 0 {
			return errors.Wrapf(ErrUnaligned, "beat %d: %s", i, t)
		}
	}

	return nil
}

// dataBeats returns the data-carrying beats after checking the transfer type
// sequence. BUSY cycles must sit between two data beats and show the address
// of the beat that follows them.
func dataBeats(beats []Transaction) ([]Transaction, error) {
	data := []Transaction{beats[0]}

	for i := 1; i < len(beats); i++ {
		t := beats[i]

		switch t.TransferType {
		case Seq:
			data = append(data, t)
		case Busy:
			if i == len(beats)-1 {
				return nil, errors.Wrap(ErrIllegalTransferType,
					"burst ends with BUSY")
			}

			next := beats[i+1]
			if next.Address != t.Address {
				return nil, errors.Wrapf(ErrBadAddressSequence,
					"BUSY at 0x%x followed by beat at 0x%x",
					t.Address, next.Address)
			}
		default:
			return nil, errors.Wrapf(ErrIllegalTransferType,
				"beat %d is %s", i, t.TransferType)
		}
	}

	return data, nil
}

func checkAddresses(burst Burst, data []Transaction) error {
	if burst.FixedLength() && len(data) != burst.Beats {
		return errors.Wrapf(ErrBeatCount, "%s with %d beats",
			burst, len(data))
	}

	bytesPerBeat := data[0].Bytes()
	totalBytes := bytesPerBeat * uint64(len(data))
	start := data[0].Address

	if totalBytes > BoundaryBytes ||
		(!burst.Wraps() && start%BoundaryBytes+totalBytes > BoundaryBytes) {
		return errors.Wrapf(ErrCrossesBoundary,
			"%s of %d bytes from 0x%x", burst, totalBytes, start)
	}

	base := start - start%totalBytes
	expected := start

	for i, t := range data {
		if t.Address != expected {
			return errors.Wrapf(ErrBadAddressSequence,
				"beat %d at 0x%x, expected 0x%x", i, t.Address, expected)
		}

		expected += bytesPerBeat
		if burst.Wraps() && expected == base+totalBytes {
			expected = base
		}
	}

	return nil
}
