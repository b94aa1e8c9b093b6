package ahb_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/ahblite/ahb"
)

func beat(addr uint64, code uint8, tt ahb.TransferType) ahb.Transaction {
	return ahb.Transaction{
		Address:      addr,
		SizeLog2:     2,
		BurstCode:    code,
		TransferType: tt,
	}
}

var _ = Describe("CheckBurst", func() {
	expectCause := func(unit []ahb.Transaction, cause error) {
		err := ahb.CheckBurst(unit, 32)
		Expect(err).To(HaveOccurred())
		Expect(errors.Cause(err)).To(Equal(cause))
	}

	It("should accept a null unit", func() {
		Expect(ahb.CheckBurst([]ahb.Transaction{{}}, 32)).To(Succeed())
	})

	It("should accept a wrapping burst", func() {
		unit := []ahb.Transaction{
			beat(0x18, ahb.BurstWrap4, ahb.NonSeq),
			beat(0x1C, ahb.BurstWrap4, ahb.Seq),
			beat(0x10, ahb.BurstWrap4, ahb.Busy),
			beat(0x10, ahb.BurstWrap4, ahb.Seq),
			beat(0x14, ahb.BurstWrap4, ahb.Seq),
		}

		Expect(ahb.CheckBurst(unit, 32)).To(Succeed())
	})

	It("should reject an empty unit", func() {
		expectCause(nil, ahb.ErrBeatCount)
	})

	It("should reject a burst that does not start with NONSEQ", func() {
		expectCause([]ahb.Transaction{beat(0, ahb.BurstSingle, ahb.Seq)},
			ahb.ErrIllegalTransferType)
	})

	It("should reject an IDLE inside a burst", func() {
		expectCause([]ahb.Transaction{
			beat(0, ahb.BurstIncr, ahb.NonSeq),
			beat(4, ahb.BurstIncr, ahb.Idle),
		}, ahb.ErrIllegalTransferType)
	})

	It("should reject a trailing BUSY", func() {
		expectCause([]ahb.Transaction{
			beat(0, ahb.BurstIncr, ahb.NonSeq),
			beat(4, ahb.BurstIncr, ahb.Busy),
		}, ahb.ErrIllegalTransferType)
	})

	It("should reject a BUSY that shows another address", func() {
		expectCause([]ahb.Transaction{
			beat(0, ahb.BurstIncr, ahb.NonSeq),
			beat(8, ahb.BurstIncr, ahb.Busy),
			beat(4, ahb.BurstIncr, ahb.Seq),
		}, ahb.ErrBadAddressSequence)
	})

	It("should reject changing attributes", func() {
		second := beat(4, ahb.BurstIncr, ahb.Seq)
		second.Write = true

		expectCause([]ahb.Transaction{
			beat(0, ahb.BurstIncr, ahb.NonSeq),
			second,
		}, ahb.ErrAttributeChanged)
	})

	It("should reject unaligned beats", func() {
		expectCause([]ahb.Transaction{beat(2, ahb.BurstSingle, ahb.NonSeq)},
			ahb.ErrUnaligned)
	})

	It("should reject sizes wider than the bus", func() {
		t := beat(0, ahb.BurstSingle, ahb.NonSeq)
		t.SizeLog2 = 3

		expectCause([]ahb.Transaction{t}, ahb.ErrSizeTooLarge)
	})

	It("should reject a fixed burst of the wrong length", func() {
		expectCause([]ahb.Transaction{
			beat(0, ahb.BurstIncr4, ahb.NonSeq),
			beat(4, ahb.BurstIncr4, ahb.Seq),
		}, ahb.ErrBeatCount)
	})

	It("should reject a burst crossing 1 KiB", func() {
		expectCause([]ahb.Transaction{
			beat(0x3F8, ahb.BurstIncr4, ahb.NonSeq),
			beat(0x3FC, ahb.BurstIncr4, ahb.Seq),
			beat(0x400, ahb.BurstIncr4, ahb.Seq),
			beat(0x404, ahb.BurstIncr4, ahb.Seq),
		}, ahb.ErrCrossesBoundary)
	})

	It("should reject an incrementing burst that wraps", func() {
		expectCause([]ahb.Transaction{
			beat(0x8, ahb.BurstIncr4, ahb.NonSeq),
			beat(0xC, ahb.BurstIncr4, ahb.Seq),
			beat(0x0, ahb.BurstIncr4, ahb.Seq),
			beat(0x4, ahb.BurstIncr4, ahb.Seq),
		}, ahb.ErrBadAddressSequence)
	})
})
